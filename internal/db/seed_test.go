package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchmaker/internal/db"
	"github.com/oggyb/matchmaker/internal/logger"
	"github.com/oggyb/matchmaker/internal/testutils"
)

func TestSeedDemoData(t *testing.T) {
	gdb := testutils.OpenTestDB(t)

	require.NoError(t, db.SeedDemoData(gdb, logger.Discard(), 12))
	// reseeding starts from scratch
	require.NoError(t, db.SeedDemoData(gdb, logger.Discard(), 12))

	var users int64
	require.NoError(t, gdb.Model(&db.User{}).Count(&users).Error)
	assert.Equal(t, int64(12), users)

	var orphanHobbies int64
	require.NoError(t, gdb.Model(&db.UserHobby{}).Where("user_id = 0").Count(&orphanHobbies).Error)
	assert.Zero(t, orphanHobbies)

	var posts int64
	require.NoError(t, gdb.Model(&db.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(3), posts)

	var convs []db.Conversation
	require.NoError(t, gdb.Find(&convs).Error)
	for _, c := range convs {
		low, high := db.PairKey(c.SenderID, c.ReceiverID)
		assert.Equal(t, low, c.PairLow)
		assert.Equal(t, high, c.PairHigh)
		assert.NotEqual(t, c.SenderID, c.ReceiverID)
	}
}

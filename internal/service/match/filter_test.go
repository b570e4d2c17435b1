package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
)

var fixedNow = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func requester(pref db.Preference) *db.User {
	return &db.User{ID: 1, Preference: pref}
}

func TestBuildFilter_BirthdayWindow(t *testing.T) {
	f, err := BuildFilter(requester(db.Preference{Gender: db.GenderFemale, MinAge: 20, MaxAge: 30}), Exclusion{}, false, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, time.Date(1996, 10, 19, 0, 0, 0, 0, time.UTC), f.BornAfter)
	assert.Equal(t, time.Date(2006, 10, 19, 0, 0, 0, 0, time.UTC), f.BornBefore)
	assert.Equal(t, db.GenderFemale, f.Gender)
	assert.Nil(t, f.Hobbies, "no hobbies means no hobby predicate")
}

func TestBuildFilter_AnyGenderOmitsPredicate(t *testing.T) {
	u := requester(db.Preference{Gender: db.GenderAny, MinAge: 18, MaxAge: 99})
	u.Hobbies = []db.UserHobby{{UserID: 1, Hobby: "chess"}}
	f, err := BuildFilter(u, Exclusion{}, false, fixedNow)
	require.NoError(t, err)

	assert.Empty(t, f.Gender)
	assert.Equal(t, []string{"chess"}, f.Hobbies)
}

func TestBuildFilter_NormalModeExcludesEverything(t *testing.T) {
	ex := Exclusion{Partners: []uint64{2, 3}, Skipped: []uint64{3, 4}}
	f, err := BuildFilter(requester(db.DefaultPreference()), ex, false, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2, 3, 4}, f.ExcludeIDs)
	assert.Nil(t, f.OnlyIDs)
	assert.False(t, f.Empty)
}

func TestBuildFilter_RevisitSkipped(t *testing.T) {
	ex := Exclusion{Partners: []uint64{3}, Skipped: []uint64{3, 4, 5}}
	f, err := BuildFilter(requester(db.DefaultPreference()), ex, true, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 3}, f.ExcludeIDs)
	assert.Equal(t, []uint64{4, 5}, f.OnlyIDs, "partners stay excluded even when skipped")
	assert.False(t, f.Empty)
}

func TestBuildFilter_RevisitWithEmptySkipListIsEmpty(t *testing.T) {
	f, err := BuildFilter(requester(db.DefaultPreference()), Exclusion{}, true, fixedNow)
	require.NoError(t, err)

	assert.True(t, f.Empty)
	assert.NotNil(t, f.OnlyIDs)
	assert.Empty(t, f.OnlyIDs)
}

func TestBuildFilter_InvertedAges(t *testing.T) {
	_, err := BuildFilter(requester(db.Preference{MinAge: 30, MaxAge: 20}), Exclusion{}, false, fixedNow)
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))
}

func TestAgeOn(t *testing.T) {
	assert.Equal(t, 24, ageOn(time.Date(2002, 10, 19, 0, 0, 0, 0, time.UTC), fixedNow))
	assert.Equal(t, 23, ageOn(time.Date(2002, 10, 20, 0, 0, 0, 0, time.UTC), fixedNow))
	assert.Equal(t, 24, ageOn(time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC), fixedNow))
}

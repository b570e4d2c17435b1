package recovery_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/config"
	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/logger"
	"github.com/oggyb/matchmaker/internal/service/recovery"
	"github.com/oggyb/matchmaker/internal/testutils"
)

type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) SendCode(_ context.Context, email, code string, _ time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes[email] = code
	return nil
}

func (i *inbox) last(email string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[email]
}

type fixture struct {
	svc    *recovery.Service
	appCtx *app.AppContext
	db     *gorm.DB
	mr     *miniredis.Miniredis
	inbox  *inbox
}

func setupService(t *testing.T) *fixture {
	t.Helper()

	gdb := testutils.OpenTestDB(t)
	rc, mr := testutils.NewTestRedis(t)
	cfg := config.New()
	cfg.Auth.JWTSecret = "reset-secret"
	cfg.OTP.TTL = 5 * time.Minute
	cfg.OTP.ResendCooldown = time.Minute
	cfg.Auth.ResetTokenTTL = 15 * time.Minute

	appCtx := app.New(cfg, gdb, rc, logger.Discard(), nil)
	box := &inbox{codes: map[string]string{}}

	require.NoError(t, gdb.Create(&db.User{ID: 1, Email: "alice@test.com", PasswordHash: "old", Name: "alice", Gender: db.GenderFemale}).Error)

	return &fixture{svc: recovery.NewRecoveryService(appCtx, box), appCtx: appCtx, db: gdb, mr: mr, inbox: box}
}

func wrongCode(code string) string {
	b := []byte(code)
	if b[len(b)-1] == '9' {
		b[len(b)-1] = '0'
	} else {
		b[len(b)-1]++
	}
	return string(b)
}

func TestRecovery_FullFlow(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "  Alice@Test.com "))
	code := f.inbox.last("alice@test.com")
	require.Len(t, code, 6)

	_, err := f.svc.VerifyCode(ctx, "alice@test.com", wrongCode(code))
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err))

	token, err := f.svc.VerifyCode(ctx, "alice@test.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = f.svc.VerifyCode(ctx, "alice@test.com", code)
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err), "codes are single use")

	err = f.svc.ResetPassword(ctx, token, "short")
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	require.NoError(t, f.svc.ResetPassword(ctx, token, "n3w-password"))

	var user db.User
	require.NoError(t, f.db.First(&user, 1).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("n3w-password")))

	err = f.svc.ResetPassword(ctx, token, "another-password")
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err), "reset tokens are single use")
}

func TestRecovery_UnknownEmail(t *testing.T) {
	f := setupService(t)

	err := f.svc.RequestCode(context.Background(), "nobody@test.com")
	assert.True(t, svcErr.IsNotFound(err))
	assert.False(t, f.mr.Exists("otp:cooldown:nobody@test.com"))
}

func TestRecovery_Cooldown(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "alice@test.com"))
	err := f.svc.RequestCode(ctx, "alice@test.com")
	assert.True(t, svcErr.IsConflict(err))

	f.mr.FastForward(time.Minute + time.Second)
	require.NoError(t, f.svc.RequestCode(ctx, "alice@test.com"))
}

func TestRecovery_CodeExpires(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "alice@test.com"))
	code := f.inbox.last("alice@test.com")

	f.mr.FastForward(5*time.Minute + time.Second)
	_, err := f.svc.VerifyCode(ctx, "alice@test.com", code)
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err))
}

func TestRecovery_ExpiredOrForgedToken(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestCode(ctx, "alice@test.com"))
	token, err := f.svc.VerifyCode(ctx, "alice@test.com", f.inbox.last("alice@test.com"))
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, token+"x", "n3w-password")
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err))

	f.appCtx.Now = func() time.Time { return time.Now().Add(time.Hour) }
	err = f.svc.ResetPassword(ctx, token, "n3w-password")
	assert.Equal(t, svcErr.KindUnauthorized, svcErr.KindOf(err))
}

package recovery

import (
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/cache"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/repository"
)

const (
	// PurposePasswordReset is the purpose claim of reset tokens.
	PurposePasswordReset = "password_reset"
	minPasswordLength    = 6
)

// ResetClaims are carried by the token handed out after a verified code.
type ResetClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service implements the forgot-password flow: email a one-time code,
// trade a valid code for a short-lived reset token, reset with the token.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	sender CodeSender
	key    []byte
}

// NewRecoveryService creates the service. A nil sender logs codes instead
// of delivering them. Without JWT_SECRET, reset tokens are signed with a
// random per-process key and do not survive a restart.
func NewRecoveryService(appCtx *app.AppContext, sender CodeSender) *Service {
	if sender == nil {
		sender = LogSender{Logger: appCtx.Logger}
	}
	key := []byte(appCtx.Config.Auth.JWTSecret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		sender: sender,
		key:    key,
	}
}

func (s *Service) totpOpts() totp.ValidateOpts {
	period := uint(s.appCtx.Config.OTP.TTL / time.Second)
	if period == 0 {
		period = 30
	}
	return totp.ValidateOpts{
		Period:    period,
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// RequestCode issues a six-digit code for the account behind email.
//
// Behavior:
//   - Unknown email is NotFound.
//   - A new code cannot be requested within OTP_RESEND_COOLDOWN (Conflict).
//   - A new code replaces any outstanding one and expires after OTP_TTL.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	s.appCtx.Logger.Debug("RequestCode called", "email", email)

	if email == "" {
		return svcErr.Validation("email is required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return svcErr.Map(err)
	}

	rc := s.appCtx.RedisCache
	cfg := s.appCtx.Config.OTP
	cooldownKey := rc.KeyForOTPCooldown(email)
	fresh, err := rc.SetNX(ctx, cooldownKey, 1, cfg.ResendCooldown)
	if err != nil {
		return svcErr.Map(err)
	}
	if !fresh {
		return svcErr.Conflict("a code was sent recently, try again later")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.appCtx.Config.OTP.Issuer,
		AccountName: user.Email,
		Period:      s.totpOpts().Period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return svcErr.Internal("failed to generate otp secret", err)
	}

	issuedAt := s.appCtx.Now().UTC().Truncate(time.Second)
	code, err := totp.GenerateCodeCustom(key.Secret(), issuedAt, s.totpOpts())
	if err != nil {
		return svcErr.Internal("failed to generate otp code", err)
	}

	if err := rc.PutOTP(ctx, email, cache.OTPRecord{Secret: key.Secret(), IssuedAt: issuedAt}, cfg.TTL); err != nil {
		return svcErr.Map(err)
	}

	if err := s.sender.SendCode(ctx, email, code, cfg.TTL); err != nil {
		s.appCtx.Logger.Error("code delivery failed", "email", email, "err", err)
		_ = rc.Del(ctx, rc.KeyForOTP(email), cooldownKey)
		return svcErr.Internal("failed to deliver code", err)
	}
	return nil
}

// VerifyCode checks a code and, when valid, consumes it and returns a reset
// token valid for RESET_TOKEN_TTL.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (string, error) {
	email = normalizeEmail(email)
	s.appCtx.Logger.Debug("VerifyCode called", "email", email)

	rc := s.appCtx.RedisCache
	rec, ok, err := rc.GetOTP(ctx, email)
	if err != nil {
		return "", svcErr.Map(err)
	}
	if !ok {
		return "", svcErr.Unauthorized("code is invalid or expired")
	}

	valid, err := totp.ValidateCustom(strings.TrimSpace(code), rec.Secret, rec.IssuedAt, s.totpOpts())
	if err != nil || !valid {
		return "", svcErr.Unauthorized("code is invalid or expired")
	}
	if s.appCtx.Now().Sub(rec.IssuedAt) > s.appCtx.Config.OTP.TTL {
		return "", svcErr.Unauthorized("code is invalid or expired")
	}

	// single use: only the caller that deletes the record gets a token
	consumed, err := rc.ConsumeOTP(ctx, email)
	if err != nil {
		return "", svcErr.Map(err)
	}
	if !consumed {
		return "", svcErr.Unauthorized("code is invalid or expired")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", svcErr.Map(err)
	}
	return s.issueResetToken(user.ID, user.Email)
}

func (s *Service) issueResetToken(userID uint64, email string) (string, error) {
	now := s.appCtx.Now()
	claims := ResetClaims{
		Email:   email,
		Purpose: PurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.appCtx.Config.Auth.ResetTokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", svcErr.Internal("failed to sign reset token", err)
	}
	return signed, nil
}

// ResetPassword sets a new password for the user named by a reset token.
// Each token works once.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	s.appCtx.Logger.Debug("ResetPassword called")

	if len(newPassword) < minPasswordLength {
		return svcErr.Validation("password must be at least 6 characters")
	}
	claims, err := s.parseResetToken(resetToken)
	if err != nil {
		return err
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return svcErr.Unauthorized("reset token is invalid or expired")
	}

	rc := s.appCtx.RedisCache
	ttl := claims.ExpiresAt.Time.Sub(s.appCtx.Now())
	if ttl <= 0 {
		ttl = time.Second
	}
	first, err := rc.SetNX(ctx, rc.KeyForUsedResetToken(claims.ID), userID, ttl)
	if err != nil {
		return svcErr.Map(err)
	}
	if !first {
		return svcErr.Unauthorized("reset token was already used")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return svcErr.Internal("failed to hash password", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Info("password reset", "user", userID)
	return nil
}

func (s *Service) parseResetToken(raw string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.appCtx.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, svcErr.Unauthorized("reset token expired")
		}
		return nil, svcErr.Unauthorized("reset token is invalid or expired")
	}
	if claims.Purpose != PurposePasswordReset || claims.ID == "" {
		return nil, svcErr.Unauthorized("reset token is invalid or expired")
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package httpx

import (
	"strconv"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	svcErr "github.com/oggyb/matchmaker/internal/errors"
)

const (
	userTokenKey = "user"
	callerKey    = "caller"
)

// Identity authenticates the bearer token and stores its subject as the
// caller id. With an empty secret every request passes unauthenticated.
func Identity(secret string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	verify := jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		ContextKey: userTokenKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if err.Error() == jwtware.ErrJWTMissingOrMalformed.Error() {
				return fiber.NewError(fiber.StatusBadRequest, "Missing or malformed JWT")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(userTokenKey).(*jwt.Token)
			if !ok {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
			}
			// reset tokens are single-purpose and never grant access
			if _, scoped := claims["purpose"]; scoped {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
			}
			sub, err := claims.GetSubject()
			if err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
			}
			id, err := strconv.ParseUint(sub, 10, 64)
			if err != nil || id == 0 {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
			}
			c.Locals(callerKey, id)
			return c.Next()
		},
	})
	return verify
}

// Caller returns the authenticated user id, if any.
func Caller(c *fiber.Ctx) (uint64, bool) {
	id, ok := c.Locals(callerKey).(uint64)
	return id, ok
}

// Authorize fails unless the request acts as userID. Without an
// authenticated caller the request is trusted as-is.
func Authorize(c *fiber.Ctx, userID uint64) error {
	caller, ok := Caller(c)
	if !ok || caller == userID {
		return nil
	}
	return svcErr.Unauthorized("token does not belong to this user")
}

// ActingUser parses the :name path id and checks it against the caller.
func ActingUser(c *fiber.Ctx, name string) (uint64, error) {
	id, err := ParamID(c, name)
	if err != nil {
		return 0, err
	}
	if err := Authorize(c, id); err != nil {
		return 0, err
	}
	return id, nil
}

// Actor resolves who performs a request whose path does not name the user.
// The authenticated caller wins; a claimed id must agree with it. Without
// authentication the claimed id is required.
func Actor(c *fiber.Ctx, claimed uint64) (uint64, error) {
	caller, ok := Caller(c)
	switch {
	case ok && claimed != 0 && claimed != caller:
		return 0, svcErr.Unauthorized("token does not belong to this user")
	case ok:
		return caller, nil
	case claimed == 0:
		return 0, svcErr.Validation("acting user id is required")
	default:
		return claimed, nil
	}
}

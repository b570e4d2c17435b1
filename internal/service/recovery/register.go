package recovery

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oggyb/matchmaker/internal/app"
)

// Registrar ties password recovery into the HTTP server. These routes are
// public: the caller has no session yet.
type Registrar struct {
	appCtx *app.AppContext
	sender CodeSender
}

// NewRegistrar creates a Registrar; a nil sender logs codes.
func NewRegistrar(appCtx *app.AppContext, sender CodeSender) *Registrar {
	return &Registrar{appCtx: appCtx, sender: sender}
}

func (r *Registrar) Register(router fiber.Router) {
	h := &handlers{svc: NewRecoveryService(r.appCtx, r.sender)}

	g := router.Group("/auth")
	g.Post("/forgot-password", h.forgotPassword)
	g.Post("/verify-otp", h.verifyOTP)
	g.Post("/reset-password", h.resetPassword)
}

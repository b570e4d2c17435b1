package notification

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

// Registrar ties the notification service into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(router fiber.Router) {
	h := &handlers{svc: NewNotificationService(r.appCtx)}

	g := router.Group("/notifications", httpx.Identity(r.appCtx.Config.Auth.JWTSecret))
	g.Get("/user/:id", h.list)
	g.Put("/user/:id/read-all", h.markAllRead)
	g.Put("/:id/read", h.markRead)
}

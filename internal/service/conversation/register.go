package conversation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

// Registrar ties the conversation service into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the /conversations routes.
func (r *Registrar) Register(router fiber.Router) {
	h := &handlers{svc: NewConversationService(r.appCtx)}

	g := router.Group("/conversations", httpx.Identity(r.appCtx.Config.Auth.JWTSecret))
	g.Get("/user/:id", h.list)
	g.Put("/:id/status", h.updateStatus)
	g.Delete("/:id", h.remove)
	g.Put("/:id/block", h.block)
	g.Delete("/:id/block", h.unblock)
}

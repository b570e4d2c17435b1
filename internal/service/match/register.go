package match

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

// Registrar ties the match service into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the /match routes.
func (r *Registrar) Register(router fiber.Router) {
	h := &handlers{svc: NewMatchService(r.appCtx)}

	g := router.Group("/match", httpx.Identity(r.appCtx.Config.Auth.JWTSecret))
	g.Post("/:id/like", h.like)
	g.Post("/:id/dislike", h.skip)
	g.Delete("/:id/dislike", h.unskip)
	g.Get("/:id/potential-matches", h.potentialMatches)
	g.Get("/:id/preferences", h.getPreferences)
	g.Put("/:id/preferences", h.updatePreferences)
	g.Get("/:id/liked-you", h.likedYou)
	g.Get("/:id/liked-you/count", h.likedYouCount)
}

package notification

import (
	"github.com/gofiber/fiber/v2"

	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

type handlers struct {
	svc *Service
}

func (h *handlers) list(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	notes, err := h.svc.List(c.UserContext(), userID, c.QueryBool("unread"))
	if err != nil {
		return err
	}
	return httpx.OK(c, notes)
}

func (h *handlers) markRead(c *fiber.Ctx) error {
	noteID, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		UserID uint64 `json:"userId"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return svcErr.Validation("invalid request body")
		}
	}
	userID, err := httpx.Actor(c, body.UserID)
	if err != nil {
		return err
	}
	if err := h.svc.MarkRead(c.UserContext(), noteID, userID); err != nil {
		return err
	}
	return httpx.OK(c, fiber.Map{"id": noteID, "read": true})
}

func (h *handlers) markAllRead(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	n, err := h.svc.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return httpx.OK(c, fiber.Map{"updated": n})
}

package conversation

import (
	"github.com/gofiber/fiber/v2"

	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

type handlers struct {
	svc *Service
}

// actorBody names the acting user when no bearer token is configured.
type actorBody struct {
	UserID uint64 `json:"userId"`
	Status string `json:"status"`
}

func parseActor(c *fiber.Ctx) (uint64, actorBody, error) {
	var body actorBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return 0, body, svcErr.Validation("invalid request body")
		}
	}
	actorID, err := httpx.Actor(c, body.UserID)
	return actorID, body, err
}

func (h *handlers) list(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	convs, err := h.svc.List(c.UserContext(), userID, c.Query("status"))
	if err != nil {
		return err
	}
	return httpx.OK(c, convs)
}

func (h *handlers) updateStatus(c *fiber.Ctx) error {
	convID, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	actorID, body, err := parseActor(c)
	if err != nil {
		return err
	}
	conv, err := h.svc.UpdateStatus(c.UserContext(), convID, actorID, body.Status)
	if err != nil {
		return err
	}
	return httpx.OK(c, conv)
}

func (h *handlers) remove(c *fiber.Ctx) error {
	convID, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	actorID, _, err := parseActor(c)
	if err != nil {
		return err
	}
	conv, err := h.svc.Delete(c.UserContext(), convID, actorID)
	if err != nil {
		return err
	}
	return httpx.OK(c, conv)
}

func (h *handlers) block(c *fiber.Ctx) error {
	convID, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	actorID, _, err := parseActor(c)
	if err != nil {
		return err
	}
	conv, err := h.svc.Block(c.UserContext(), convID, actorID)
	if err != nil {
		return err
	}
	return httpx.OK(c, conv)
}

func (h *handlers) unblock(c *fiber.Ctx) error {
	convID, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	actorID, _, err := parseActor(c)
	if err != nil {
		return err
	}
	conv, err := h.svc.Unblock(c.UserContext(), convID, actorID)
	if err != nil {
		return err
	}
	return httpx.OK(c, conv)
}

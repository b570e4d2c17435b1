package match

import (
	"github.com/gofiber/fiber/v2"

	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

type handlers struct {
	svc *Service
}

// parties resolves a like or skip: the path names the target, the body
// {"id"} names the actor. An authenticated caller may omit the body.
func parties(c *fiber.Ctx) (actorID, targetID uint64, err error) {
	targetID, err = httpx.ParamID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	var body httpx.IDBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return 0, 0, svcErr.Validation("invalid request body")
		}
	}
	actorID, err = httpx.Actor(c, body.ID)
	if err != nil {
		return 0, 0, err
	}
	return actorID, targetID, nil
}

func (h *handlers) like(c *fiber.Ctx) error {
	actorID, targetID, err := parties(c)
	if err != nil {
		return err
	}
	res, err := h.svc.Like(c.UserContext(), actorID, targetID)
	if err != nil {
		return err
	}
	return httpx.OK(c, res)
}

func (h *handlers) skip(c *fiber.Ctx) error {
	actorID, targetID, err := parties(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.Skip(c.UserContext(), actorID, targetID)
	if err != nil {
		return err
	}
	return httpx.OK(c, profile)
}

func (h *handlers) unskip(c *fiber.Ctx) error {
	actorID, targetID, err := parties(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.Unskip(c.UserContext(), actorID, targetID)
	if err != nil {
		return err
	}
	return httpx.OK(c, profile)
}

func (h *handlers) potentialMatches(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	req := PageRequest{
		Page:        c.QueryInt("page", 1),
		Limit:       c.QueryInt("limit", 0),
		ShowSkipped: c.QueryBool("showSkipped"),
	}
	page, err := h.svc.PotentialMatches(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return httpx.OK(c, page)
}

func (h *handlers) getPreferences(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	pref, err := h.svc.GetPreferences(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return httpx.OK(c, pref)
}

func (h *handlers) updatePreferences(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	var upd PreferenceUpdate
	if err := c.BodyParser(&upd); err != nil {
		return svcErr.Validation("invalid request body")
	}
	pref, err := h.svc.UpdatePreferences(c.UserContext(), userID, upd)
	if err != nil {
		return err
	}
	return httpx.OK(c, pref)
}

func (h *handlers) likedYou(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	var token *string
	if t := c.Query("token"); t != "" {
		token = &t
	}
	page, err := h.svc.ListLikedYou(c.UserContext(), userID, token)
	if err != nil {
		return err
	}
	return httpx.OK(c, page)
}

func (h *handlers) likedYouCount(c *fiber.Ctx) error {
	userID, err := httpx.ActingUser(c, "id")
	if err != nil {
		return err
	}
	count, err := h.svc.CountLikedYou(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return httpx.OK(c, fiber.Map{"count": count})
}

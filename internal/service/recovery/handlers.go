package recovery

import (
	"github.com/gofiber/fiber/v2"

	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

type handlers struct {
	svc *Service
}

type forgotRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func (h *handlers) forgotPassword(c *fiber.Ctx) error {
	var req forgotRequest
	if err := c.BodyParser(&req); err != nil {
		return svcErr.Validation("invalid request body")
	}
	if err := h.svc.RequestCode(c.UserContext(), req.Email); err != nil {
		return err
	}
	return httpx.OK(c, fiber.Map{"sent": true})
}

func (h *handlers) verifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return svcErr.Validation("invalid request body")
	}
	if req.Email == "" || req.OTP == "" {
		return svcErr.Validation("email and otp are required")
	}
	token, err := h.svc.VerifyCode(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	return httpx.OK(c, fiber.Map{"resetToken": token})
}

func (h *handlers) resetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return svcErr.Validation("invalid request body")
	}
	if req.ResetToken == "" {
		return svcErr.Validation("resetToken is required")
	}
	if err := h.svc.ResetPassword(c.UserContext(), req.ResetToken, req.NewPassword); err != nil {
		return err
	}
	return httpx.OK(c, fiber.Map{"reset": true})
}

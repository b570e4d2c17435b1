// Package httpx holds the HTTP plumbing shared by every service registrar:
// the JSON envelope, error translation, path parsing and caller identity.
package httpx

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	svcErr "github.com/oggyb/matchmaker/internal/errors"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// OK writes a 200 success envelope.
func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Status: "success", Message: "ok", Data: data})
}

// Created writes a 201 success envelope.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Status: "success", Message: "created", Data: data})
}

// ErrorHandler translates service errors into status codes and envelopes.
// Internal causes are logged and never echoed to the client.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(Envelope{Status: "error", Message: fe.Message})
		}

		status := svcErr.HTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		}
		return c.Status(status).JSON(Envelope{Status: "error", Message: svcErr.PublicMessage(err)})
	}
}

// ParamID parses a positive uint64 path parameter.
func ParamID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Validation(name + " must be a positive integer")
	}
	return id, nil
}

// IDBody is the {"id": actorId} body of like and skip.
type IDBody struct {
	ID uint64 `json:"id"`
}

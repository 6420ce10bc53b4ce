package api

import "github.com/gofiber/fiber/v2"

// envelope is the JSON shape every handler responds with: success plus
// either a data payload or an error/message pair.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondOK writes a 200 with data as the payload.
func RespondOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(envelope{Success: true, Data: data})
}

// RespondMessage writes a 200 with a plain status message, no data.
func RespondMessage(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(envelope{Success: true, Message: message})
}

// RespondValidationError writes a 400 for a malformed request.
func RespondValidationError(c *fiber.Ctx, message, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: message, Error: detail})
}

// RespondNotFound writes a 404 for a missing resource.
func RespondNotFound(c *fiber.Ctx, resource, detail string) error {
	return c.Status(fiber.StatusNotFound).JSON(envelope{Success: false, Message: resource + " not found", Error: detail})
}

// RespondInternalError writes a 500 for an unexpected failure.
func RespondInternalError(c *fiber.Ctx, message, detail string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(envelope{Success: false, Message: message, Error: detail})
}

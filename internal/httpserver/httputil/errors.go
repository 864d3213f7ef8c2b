package httputil

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// errorBody is the OpenAI-style error envelope.
type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

// WriteError standardizes JSON error responses. Status codes below 500
// are reported as invalid_request_error, everything else as server_error.
func WriteError(c *fiber.Ctx, status int, msg string) error {
	return writeError(c, status, msg, "")
}

// WriteFieldError reports a validation failure naming the offending
// request field.
func WriteFieldError(c *fiber.Ctx, status int, param, msg string) error {
	return writeError(c, status, msg, param)
}

func writeError(c *fiber.Ctx, status int, msg, param string) error {
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = "unknown error"
		}
	}
	errType := "server_error"
	if status < 500 {
		errType = "invalid_request_error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": errorBody{
			Message: msg,
			Type:    errType,
			Param:   param,
		},
	})
}

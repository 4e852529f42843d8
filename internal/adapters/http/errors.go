package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Error string `json:"error"`
}

// UnknownStationError is returned by /next-metro for a station that does not resolve.
type UnknownStationError struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions"`
}

// StationNotFoundError is returned by /last-metro for a station without a recorded departure.
type StationNotFoundError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Station string `json:"station"`
}

func newError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIError{Error: message})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, msg)
}

// errInternal logs err against the request and returns a 500 with msg.
func errInternal(c *fiber.Ctx, msg string, err error) error {
	LoggerFromCtx(c.UserContext()).Error(msg, "path", c.Path(), "error", err)
	return newError(c, fiber.StatusInternalServerError, msg)
}

// NotFoundHandler answers every unmatched route.
func NotFoundHandler(c *fiber.Ctx) error {
	return newError(c, fiber.StatusNotFound, "not found")
}

// ErrorHandler renders errors that escape handlers (fiber errors, timeouts, panics
// recovered upstream) with the same JSON shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		LoggerFromCtx(c.UserContext()).Error("unhandled error", "path", c.Path(), "error", err)
	}
	return newError(c, code, msg)
}

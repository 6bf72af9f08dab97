package api

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"todo-service/internal/apperr"
)

const (
	msgInternal     = "Internal server error"
	msgInvalidInput = "Invalid input"
	msgCannotParse  = "Cannot parse JSON"
)

// Envelope is the body of every response.
type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{Message: message, Data: data})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden, apperr.KindUnauthorized:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindInvalidArgument:
		return fiber.StatusBadRequest
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err in the envelope. Internal causes never reach the
// client.
func respondError(c *fiber.Ctx, err error) error {
	return respond(c, statusForKind(apperr.KindOf(err)), apperr.MessageOf(err, msgInternal), nil)
}

// respondInvalid reports a request body that failed validation, with one
// entry per offending field.
func respondInvalid(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return respond(c, fiber.StatusBadRequest, msgInvalidInput, fiber.Map{"details": err.Error()})
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fe.Field()+": failed on '"+fe.Tag()+"'")
	}
	return respond(c, fiber.StatusBadRequest, msgInvalidInput, fiber.Map{"details": details})
}

// ErrorHandler is installed on the fiber app so routing errors and panics
// recovered by the recover middleware still come back in the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return respond(c, fe.Code, fe.Message, nil)
	}

	slog.ErrorContext(c.UserContext(), "Unhandled error",
		slog.String("path", c.Path()), slog.String("error", err.Error()))

	return respondError(c, err)
}

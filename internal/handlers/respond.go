package handlers

import (
	"errors"
	"fmt"
	"log"

	"pasar/internal/payments"
	"pasar/internal/services"
	"pasar/internal/uploads"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// bind parses the JSON body into dst and validates it. When ok is false the
// error response has already been written and err is what the handler returns.
func bind(c *fiber.Ctx, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrTotalMismatch):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrOTPMismatch):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrOTPNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrOTPAlreadyUsed),
		errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusConflict
	case errors.Is(err, payments.ErrNotConfigured), errors.Is(err, uploads.ErrNotConfigured):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// fail writes the response for a service error. Server-side failures are
// logged and not echoed to the client.
func fail(c *fiber.Ctx, err error, message string) error {
	status := statusFor(err)
	log.Printf("%s: %v", message, err)
	if status >= fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{
			"message": message,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

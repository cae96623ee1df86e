package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
)

// errorResponse is the JSON error body returned for every failure.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a business error code to an HTTP status. The mapping is
// deterministic: every code resolves to exactly one status.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorAccountNotFound, domain.ErrorTransactionNotFound:
		return fiber.StatusNotFound
	case domain.ErrorDuplicateAccountNumber:
		return fiber.StatusConflict
	case domain.ErrorInvalidInput,
		domain.ErrorInsufficientBalance,
		domain.ErrorInactiveAccount,
		domain.ErrorInvalidTransactionState,
		domain.ErrorTransferFailed,
		domain.ErrorSameAccountTransfer:
		return fiber.StatusBadRequest
	case domain.ErrorLockAcquisition:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// renderError writes the error body for a service failure. Internal causes
// are not leaked: only the code and the business message go out.
func renderError(c *fiber.Ctx, err error) error {
	code := domain.CodeOf(err)

	message := "internal server error"

	var domainErr domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	return c.Status(statusFor(code)).JSON(errorResponse{
		Code:    string(code),
		Message: message,
	})
}

// badRequest writes a C001 response for request-shape failures.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
		Code:    string(domain.ErrorInvalidInput),
		Message: message,
	})
}

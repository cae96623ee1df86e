// Package api exposes the remittance operations over HTTP. It validates
// request shapes, delegates to the services, and maps business error codes
// to HTTP statuses deterministically.
package api

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts all v1 endpoints on the fiber app.
func RegisterRoutes(app *fiber.App, accounts *AccountHandler, transactions *TransactionHandler) {
	v1 := app.Group("/v1")

	v1.Post("/accounts", accounts.Create)
	v1.Get("/accounts", accounts.List)
	v1.Get("/accounts/:id", accounts.Get)
	v1.Post("/accounts/:id/deposit", accounts.Deposit)
	v1.Post("/accounts/:id/withdraw", accounts.Withdraw)

	v1.Post("/transfers", transactions.Transfer)
	v1.Get("/transactions", transactions.List)
	v1.Get("/transactions/:id", transactions.Get)
}

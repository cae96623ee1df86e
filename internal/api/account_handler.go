package api

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
	"github.com/silverhyuk/david-remittance-service/internal/service"
	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

// AccountHandler exposes the account commands and queries over HTTP.
type AccountHandler struct {
	accounts *service.AccountService
	validate *validator.Validate
	logger   log.Logger
}

// NewAccountHandler wires the account handler.
func NewAccountHandler(accounts *service.AccountService, validate *validator.Validate, logger log.Logger) *AccountHandler {
	if logger == nil {
		logger = log.NewNop()
	}

	return &AccountHandler{accounts: accounts, validate: validate, logger: logger}
}

type createAccountRequest struct {
	AccountNumber  string `json:"accountNumber" validate:"required"`
	AccountName    string `json:"accountName" validate:"required"`
	InitialBalance string `json:"initialBalance" validate:"required"`
}

type amountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type accountResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type idResponse struct {
	ID string `json:"id"`
}

// Create handles POST /v1/accounts.
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	initialBalance, err := decimal.NewFromString(req.InitialBalance)
	if err != nil {
		return badRequest(c, "initialBalance must be a decimal number")
	}

	accountID, err := h.accounts.CreateAccount(c.Context(), req.AccountNumber, req.AccountName, initialBalance)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(idResponse{ID: accountID.String()})
}

// Get handles GET /v1/accounts/:id.
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	account, err := h.accounts.GetAccount(c.Context(), accountID)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(toAccountResponse(account))
}

// List handles GET /v1/accounts.
func (h *AccountHandler) List(c *fiber.Ctx) error {
	accounts, err := h.accounts.ListAccounts(c.Context())
	if err != nil {
		return renderError(c, err)
	}

	responses := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, toAccountResponse(account))
	}

	return c.JSON(responses)
}

// Deposit handles POST /v1/accounts/:id/deposit.
func (h *AccountHandler) Deposit(c *fiber.Ctx) error {
	return h.mutate(c, h.accounts.Deposit)
}

// Withdraw handles POST /v1/accounts/:id/withdraw.
func (h *AccountHandler) Withdraw(c *fiber.Ctx) error {
	return h.mutate(c, h.accounts.Withdraw)
}

func (h *AccountHandler) mutate(c *fiber.Ctx, apply func(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (uuid.UUID, error)) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return badRequest(c, "amount must be a decimal number")
	}

	id, err := apply(c.Context(), accountID, amount)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(idResponse{ID: id.String()})
}

func toAccountResponse(account *domain.Account) accountResponse {
	return accountResponse{
		ID:            account.ID.String(),
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		Balance:       account.Balance.String(),
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:     account.UpdatedAt.UTC().Format(timeFormat),
	}
}

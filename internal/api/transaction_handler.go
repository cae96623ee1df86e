package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
	"github.com/silverhyuk/david-remittance-service/internal/service"
	"github.com/silverhyuk/david-remittance-service/pkg/log"
)

// timeFormat is the wire format for timestamps.
const timeFormat = "2006-01-02T15:04:05.000Z"

// TransactionHandler exposes transfers and transaction queries over HTTP.
type TransactionHandler struct {
	transactions *service.TransactionService
	validate     *validator.Validate
	logger       log.Logger
}

// NewTransactionHandler wires the transaction handler.
func NewTransactionHandler(transactions *service.TransactionService, validate *validator.Validate, logger log.Logger) *TransactionHandler {
	if logger == nil {
		logger = log.NewNop()
	}

	return &TransactionHandler{transactions: transactions, validate: validate, logger: logger}
}

type transferRequest struct {
	SourceAccountID string `json:"sourceAccountId" validate:"required,uuid"`
	TargetAccountID string `json:"targetAccountId" validate:"required,uuid"`
	Amount          string `json:"amount" validate:"required"`
	Description     string `json:"description"`
}

type transactionResponse struct {
	ID              string  `json:"id"`
	SourceAccountID *string `json:"sourceAccountId,omitempty"`
	TargetAccountID *string `json:"targetAccountId,omitempty"`
	Amount          string  `json:"amount"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	Description     string  `json:"description"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// Transfer handles POST /v1/transfers.
func (h *TransactionHandler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	sourceAccountID, err := uuid.Parse(req.SourceAccountID)
	if err != nil {
		return badRequest(c, "invalid sourceAccountId")
	}

	targetAccountID, err := uuid.Parse(req.TargetAccountID)
	if err != nil {
		return badRequest(c, "invalid targetAccountId")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return badRequest(c, "amount must be a decimal number")
	}

	transactionID, err := h.transactions.Transfer(c.Context(), sourceAccountID, targetAccountID, amount, req.Description)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(idResponse{ID: transactionID.String()})
}

// Get handles GET /v1/transactions/:id.
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid transaction id")
	}

	transaction, err := h.transactions.GetTransaction(c.Context(), transactionID)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(toTransactionResponse(transaction))
}

// List handles GET /v1/transactions filtered by exactly one of
// sourceAccountId, targetAccountId, type, or status.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var (
		transactions []*domain.Transaction
		err          error
	)

	switch {
	case c.Query("sourceAccountId") != "":
		var accountID uuid.UUID

		accountID, err = uuid.Parse(c.Query("sourceAccountId"))
		if err != nil {
			return badRequest(c, "invalid sourceAccountId")
		}

		transactions, err = h.transactions.ListBySourceAccount(c.Context(), accountID)
	case c.Query("targetAccountId") != "":
		var accountID uuid.UUID

		accountID, err = uuid.Parse(c.Query("targetAccountId"))
		if err != nil {
			return badRequest(c, "invalid targetAccountId")
		}

		transactions, err = h.transactions.ListByTargetAccount(c.Context(), accountID)
	case c.Query("type") != "":
		transactions, err = h.transactions.ListByType(c.Context(), domain.TransactionType(c.Query("type")))
	case c.Query("status") != "":
		transactions, err = h.transactions.ListByStatus(c.Context(), domain.TransactionStatus(c.Query("status")))
	default:
		return badRequest(c, "one of sourceAccountId, targetAccountId, type or status is required")
	}

	if err != nil {
		return renderError(c, err)
	}

	responses := make([]transactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		responses = append(responses, toTransactionResponse(transaction))
	}

	return c.JSON(responses)
}

func toTransactionResponse(transaction *domain.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          transaction.ID.String(),
		Amount:      transaction.Amount.String(),
		Type:        string(transaction.Type),
		Status:      string(transaction.Status),
		Description: transaction.Description,
		CreatedAt:   transaction.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   transaction.UpdatedAt.UTC().Format(timeFormat),
	}

	if transaction.SourceAccountID != nil {
		source := transaction.SourceAccountID.String()
		resp.SourceAccountID = &source
	}

	if transaction.TargetAccountID != nil {
		target := transaction.TargetAccountID.String()
		resp.TargetAccountID = &target
	}

	return resp
}

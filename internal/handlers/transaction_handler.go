package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/services"
)

// Ledger is the money-moving side of the service layer
type Ledger interface {
	RecordTransaction(ctx context.Context, ownerID int64, in services.TransactionInput) (*services.TransactionResult, error)
	RecordInstallmentPayment(ctx context.Context, ownerID, planID int64, in services.PaymentInput) (*services.PaymentResult, error)
	DeleteTransaction(ctx context.Context, ownerID, entryID int64) error
	ListTransactions(ctx context.Context, ownerID int64, filter services.TransactionFilter) ([]models.LedgerEntry, error)
	Summary(ctx context.Context, ownerID int64) (*models.LedgerSummary, error)
}

type TransactionHandler struct {
	ledger Ledger
}

func NewTransactionHandler(ledger Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// ListTransactions returns ledger entries, newest first
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param type query string false "deposit or withdrawal"
// @Param cardId query int false "Card ID"
// @Param q query string false "Search in title and description"
// @Success 200 {array} models.LedgerEntry
// @Failure 400 {object} services.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := services.TransactionFilter{
		Kind:   models.EntryKind(query.Get("type")),
		Search: query.Get("q"),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		services.SendErrorResponse(w, "Invalid type", http.StatusBadRequest, map[string]string{"type": "must be one of: deposit withdrawal"})
		return
	}
	if raw := query.Get("cardId"); raw != "" {
		cardID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || cardID <= 0 {
			services.SendErrorResponse(w, "Invalid cardId", http.StatusBadRequest, nil)
			return
		}
		filter.CardID = cardID
	}

	entries, err := h.ledger.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// RecordTransaction records a deposit or withdrawal
// @Summary Record transaction
// @Description Insert a ledger entry and move the card balance atomically
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.TransactionInput true "Transaction details"
// @Success 201 {object} services.TransactionResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req services.TransactionInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.ledger.RecordTransaction(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// DeleteTransaction removes a ledger entry
// @Summary Delete transaction
// @Description Remove the entry only. The card balance is not reversed.
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), userID, entryID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

// Summary returns dashboard totals
// @Summary Ledger summary
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.LedgerSummary
// @Router /transactions/summary [get]
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	summary, err := h.ledger.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

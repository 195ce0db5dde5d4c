package handlers

import (
	"context"
	"net/http"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/services"
)

type Cards interface {
	CreateCard(ctx context.Context, ownerID int64, in services.CardInput) (*models.Card, error)
	ListCards(ctx context.Context, ownerID int64) ([]models.Card, error)
	GetCard(ctx context.Context, ownerID, cardID int64) (*models.Card, error)
	DeleteCard(ctx context.Context, ownerID, cardID int64) error
}

type CardHandler struct {
	cards Cards
}

func NewCardHandler(cards Cards) *CardHandler {
	return &CardHandler{cards: cards}
}

// ListCards returns the caller's cards
// @Summary List cards
// @Description List the user's bank cards with current balances. CVV2 is never included.
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Card
// @Failure 401 {object} services.ErrorResponse
// @Router /cards [get]
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	cards, err := h.cards.ListCards(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// CreateCard registers a bank card
// @Summary Add card
// @Description Register a card with an opening balance. bank_name is inferred from the BIN when omitted.
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CardInput true "Card details"
// @Success 201 {object} models.Card
// @Failure 400 {object} services.ErrorResponse
// @Router /cards [post]
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req services.CardInput
	if !decodeJSON(w, r, &req) {
		return
	}

	card, err := h.cards.CreateCard(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// GetCard returns one card including its decrypted CVV2
// @Summary Get card
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param cardId path int true "Card ID"
// @Success 200 {object} models.Card
// @Failure 404 {object} services.ErrorResponse
// @Router /cards/{cardId} [get]
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	cardID, ok := pathID(w, r, "cardId")
	if !ok {
		return
	}

	card, err := h.cards.GetCard(r.Context(), userID, cardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard removes a card and its ledger history
// @Summary Delete card
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param cardId path int true "Card ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /cards/{cardId} [delete]
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	cardID, ok := pathID(w, r, "cardId")
	if !ok {
		return
	}

	if err := h.cards.DeleteCard(r.Context(), userID, cardID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "card deleted"})
}

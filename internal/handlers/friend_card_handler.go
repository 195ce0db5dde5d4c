package handlers

import (
	"context"
	"net/http"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/services"
)

type FriendCards interface {
	Create(ctx context.Context, ownerID int64, in services.FriendCardInput) (*models.FriendCard, error)
	Update(ctx context.Context, ownerID, id int64, in services.FriendCardInput) (*models.FriendCard, error)
	Delete(ctx context.Context, ownerID, id int64) error
	List(ctx context.Context, ownerID int64) ([]models.FriendCard, error)
	ShareQR(ctx context.Context, ownerID, id int64) (*services.ShareCode, error)
}

type FriendCardHandler struct {
	friends FriendCards
}

func NewFriendCardHandler(friends FriendCards) *FriendCardHandler {
	return &FriendCardHandler{friends: friends}
}

// ListFriendCards returns the saved payee cards
// @Summary List friend cards
// @Tags FriendCards
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FriendCard
// @Router /friend-cards [get]
func (h *FriendCardHandler) ListFriendCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	cards, err := h.friends.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// CreateFriendCard saves a payee card
// @Summary Add friend card
// @Tags FriendCards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.FriendCardInput true "Friend card details"
// @Success 201 {object} models.FriendCard
// @Failure 400 {object} services.ErrorResponse
// @Router /friend-cards [post]
func (h *FriendCardHandler) CreateFriendCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req services.FriendCardInput
	if !decodeJSON(w, r, &req) {
		return
	}

	card, err := h.friends.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// UpdateFriendCard replaces a payee card's details
// @Summary Update friend card
// @Tags FriendCards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Friend card ID"
// @Param request body services.FriendCardInput true "Friend card details"
// @Success 200 {object} models.FriendCard
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /friend-cards/{id} [put]
func (h *FriendCardHandler) UpdateFriendCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.FriendCardInput
	if !decodeJSON(w, r, &req) {
		return
	}

	card, err := h.friends.Update(r.Context(), userID, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteFriendCard removes a payee card
// @Summary Delete friend card
// @Tags FriendCards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Friend card ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /friend-cards/{id} [delete]
func (h *FriendCardHandler) DeleteFriendCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.friends.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "friend card deleted"})
}

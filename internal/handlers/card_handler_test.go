package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/services"
)

func cardRouter(cards *MockCards) http.Handler {
	h := NewCardHandler(cards)
	return newRouter(func(r chi.Router) {
		r.Get("/cards", h.ListCards)
		r.Post("/cards", h.CreateCard)
		r.Get("/cards/{cardId}", h.GetCard)
		r.Delete("/cards/{cardId}", h.DeleteCard)
	})
}

func TestCardHandler_CreateCard(t *testing.T) {
	cards := new(MockCards)
	router := cardRouter(cards)

	cards.On("CreateCard", mock.Anything, testUserID, mock.MatchedBy(func(in services.CardInput) bool {
		return in.CardNumber == "6037991234567890" && in.InitialBalance.Equal(decimal.NewFromInt(500000))
	})).Return(&models.Card{ID: 3, BankName: "Bank Melli Iran", Balance: decimal.NewFromInt(500000)}, nil)

	w := do(router, http.MethodPost, "/cards",
		`{"card_number":"6037991234567890","card_holder_name":"Sara","initial_balance":500000}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":500000`)
	cards.AssertExpectations(t)
}

func TestCardHandler_CreateCardValidation(t *testing.T) {
	cards := new(MockCards)
	router := cardRouter(cards)

	cards.On("CreateCard", mock.Anything, testUserID, mock.Anything).
		Return(nil, services.NewValidationError("validation failed", map[string]string{"card_number": "must be exactly 16 digits"}))

	w := do(router, http.MethodPost, "/cards", `{"card_number":"123"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be exactly 16 digits", decodeError(t, w).Details["card_number"])
}

func TestCardHandler_GetAndDelete(t *testing.T) {
	cards := new(MockCards)
	router := cardRouter(cards)

	cards.On("GetCard", mock.Anything, testUserID, int64(3)).Return(&models.Card{ID: 3, CVV2: "123"}, nil)
	cards.On("GetCard", mock.Anything, testUserID, int64(99)).Return(nil, services.ErrCardNotFound)
	cards.On("DeleteCard", mock.Anything, testUserID, int64(3)).Return(nil)

	w := do(router, http.MethodGet, "/cards/3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cvv2":"123"`)

	w = do(router, http.MethodGet, "/cards/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/cards/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodDelete, "/cards/3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	cards.AssertExpectations(t)
}

func TestCardHandler_ListCards(t *testing.T) {
	cards := new(MockCards)
	router := cardRouter(cards)

	cards.On("ListCards", mock.Anything, testUserID).Return([]models.Card{{ID: 1}, {ID: 2}}, nil)

	w := do(router, http.MethodGet, "/cards", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":2`)
}

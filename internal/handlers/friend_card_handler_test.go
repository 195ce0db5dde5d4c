package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cardledger/backend/internal/models"
	"github.com/cardledger/backend/internal/services"
)

func friendRouter(friends *MockFriendCards) http.Handler {
	h := NewFriendCardHandler(friends)
	return newRouter(func(r chi.Router) {
		r.Get("/friend-cards", h.ListFriendCards)
		r.Post("/friend-cards", h.CreateFriendCard)
		r.Put("/friend-cards/{id}", h.UpdateFriendCard)
		r.Delete("/friend-cards/{id}", h.DeleteFriendCard)
		r.Get("/friend-cards/{id}/qr", h.ShareQR)
	})
}

const friendBody = `{"card_title":"Reza","card_number":"6219861234567890","sheba_number":"IR120170000000123456789012"}`

func TestFriendCardHandler_CRUD(t *testing.T) {
	friends := new(MockFriendCards)
	router := friendRouter(friends)

	in := services.FriendCardInput{
		CardTitle:   "Reza",
		CardNumber:  "6219861234567890",
		ShebaNumber: "IR120170000000123456789012",
	}
	friends.On("Create", mock.Anything, testUserID, in).Return(&models.FriendCard{ID: 1, CardTitle: "Reza"}, nil)
	friends.On("Update", mock.Anything, testUserID, int64(1), in).Return(&models.FriendCard{ID: 1, CardTitle: "Reza"}, nil)
	friends.On("List", mock.Anything, testUserID).Return([]models.FriendCard{{ID: 1}}, nil)
	friends.On("Delete", mock.Anything, testUserID, int64(1)).Return(nil)

	assert.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/friend-cards", friendBody).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodPut, "/friend-cards/1", friendBody).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/friend-cards", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodDelete, "/friend-cards/1", "").Code)
	friends.AssertExpectations(t)
}

func TestFriendCardHandler_ShareQR(t *testing.T) {
	friends := new(MockFriendCards)
	router := friendRouter(friends)

	friends.On("ShareQR", mock.Anything, testUserID, int64(1)).
		Return(&services.ShareCode{Payload: "card:6219861234567890", Image: "iVBORw0KGgo="}, nil)
	friends.On("ShareQR", mock.Anything, testUserID, int64(2)).Return(nil, services.ErrFriendCardNotFound)

	w := do(router, http.MethodGet, "/friend-cards/1/qr", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), `"image":"iVBORw0KGgo="`)

	w = do(router, http.MethodGet, "/friend-cards/2/qr", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

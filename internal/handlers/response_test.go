package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardledger/backend/internal/services"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", services.NewValidationError("validation failed", map[string]string{"amount": "must be greater than 0"}), http.StatusBadRequest, "validation failed"},
		{"not found", services.ErrCardNotFound, http.StatusNotFound, "card not found"},
		{"insufficient funds", services.NewInsufficientFundsError("insufficient funds, available balance: 10"), http.StatusUnprocessableEntity, "insufficient funds, available balance: 10"},
		{"auth required", services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"unexpected", services.NewUnexpectedError("failed to insert", errors.New("pq: connection refused")), http.StatusInternalServerError, "internal server error"},
		{"untagged", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestWriteError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := services.NewValidationError("validation failed", map[string]string{"card_number": "must be exactly 16 digits"})

	writeError(w, httptest.NewRequest(http.MethodPost, "/cards", nil), err)

	resp := decodeError(t, w)
	assert.Equal(t, "must be exactly 16 digits", resp.Details["card_number"])
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name   string
		body   string
		wantOK bool
		errMsg string
	}{
		{"single object", `{"name":"a"}`, true, ""},
		{"unknown field", `{"name":"a","admin":true}`, false, "Invalid request body"},
		{"two objects", `{"name":"a"}{"name":"b"}`, false, "Request body must only contain a single JSON object"},
		{"malformed", `{"name":`, false, "Invalid request body"},
		{"oversized", `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`, false, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			ok := decodeJSON(w, r, &dst)

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, tt.errMsg, decodeError(t, w).Error)
			}
		})
	}
}

func TestOwnerIDRequiresAuthentication(t *testing.T) {
	h := NewCardHandler(new(MockCards))
	w := httptest.NewRecorder()

	h.ListCards(w, httptest.NewRequest(http.MethodGet, "/cards", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardledger/backend/internal/services"
)

func TestBankHandler_GetAllBanks(t *testing.T) {
	h := NewBankHandler(services.NewBankService(t.TempDir()))
	w := httptest.NewRecorder()

	h.GetAllBanks(w, httptest.NewRequest(http.MethodGet, "/banks", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))

	var banks []services.Bank
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &banks))
	require.NotEmpty(t, banks)
	assert.Contains(t, banks[0].LogoData, "data:image/svg+xml;base64,")
}

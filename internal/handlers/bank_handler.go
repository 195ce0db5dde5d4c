package handlers

import (
	"net/http"

	"github.com/cardledger/backend/internal/services"
)

type BankCatalog interface {
	Banks() []services.Bank
}

type BankHandler struct {
	catalog BankCatalog
}

func NewBankHandler(catalog BankCatalog) *BankHandler {
	return &BankHandler{catalog: catalog}
}

// GetAllBanks returns all supported banks
// @Summary Get all banks
// @Description Retrieve the bank catalog with BIN prefixes and inline SVG logos
// @Tags Banks
// @Produce json
// @Success 200 {array} services.Bank
// @Router /banks [get]
func (h *BankHandler) GetAllBanks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeJSON(w, http.StatusOK, h.catalog.Banks())
}

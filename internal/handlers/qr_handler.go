package handlers

import (
	"net/http"
)

// ShareQR renders a friend card as a QR code
// @Summary Friend card QR code
// @Description Encode the payee's card number and IBAN as a PNG QR code
// @Tags FriendCards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Friend card ID"
// @Success 200 {object} services.ShareCode
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /friend-cards/{id}/qr [get]
func (h *FriendCardHandler) ShareQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	code, err := h.friends.ShareQR(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, code)
}

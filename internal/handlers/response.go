package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mW "github.com/cardledger/backend/internal/middleware"
	"github.com/cardledger/backend/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields. It writes the 400 response itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps a service error kind onto its HTTP status
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case services.KindAuthRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error. Unexpected failures are logged and
// answered with a generic message so internals never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	status := statusFor(kind)

	if kind == services.KindUnexpected {
		log.Printf("[HTTP] %s %s failed: %v", r.Method, r.URL.Path, err)
		services.SendErrorResponse(w, "internal server error", status, nil)
		return
	}

	var se *services.Error
	var details map[string]string
	if errors.As(err, &se) {
		details = se.Fields
	}
	services.SendErrorResponse(w, err.Error(), status, details)
}

// ownerID returns the authenticated user, answering 401 when absent
func ownerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := mW.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return 0, false
	}
	return id, true
}

// pathID parses a positive integer URL parameter, answering 400 otherwise
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid "+name, http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}

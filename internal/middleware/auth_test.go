package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubParser map[string]int64

func (p stubParser) ParseToken(_ context.Context, token string) (int64, error) {
	if id, ok := p[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(strconv.FormatInt(id, 10)))
	})
}

func TestAuth(t *testing.T) {
	handler := Auth(stubParser{"good": 42}, "token")(echoUser())

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bearer header",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			wantStatus: http.StatusOK,
			wantBody:   "42",
		},
		{
			name:       "session cookie",
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: "good"}) },
			wantStatus: http.StatusOK,
			wantBody:   "42",
		},
		{
			name:       "missing token",
			prepare:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Token good") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer revoked") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cards", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), "login required")
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := UserIDFromContext(WithUserID(context.Background(), 9))
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)

	// a plain string key must not collide with the typed one
	ctx := context.WithValue(context.Background(), "userID", int64(9))
	_, ok = UserIDFromContext(ctx)
	assert.False(t, ok)
}

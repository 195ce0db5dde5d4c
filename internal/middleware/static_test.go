package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlaceholder = `<svg id="placeholder"/>`

func TestStaticFileServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "melli.svg"), []byte(`<svg id="melli"/>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("secret"), 0o644))

	handler := StaticFileServer(dir, testPlaceholder)

	t.Run("existing logo", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/melli.svg", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `id="melli"`)
		assert.Equal(t, "public, max-age=2592000", w.Header().Get("Cache-Control"))
	})

	t.Run("missing logo falls back", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown.svg", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testPlaceholder, w.Body.String())
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	})

	t.Run("non-svg files are not served", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes.txt", nil))

		assert.Equal(t, testPlaceholder, w.Body.String())
	})

	t.Run("path traversal stays inside dir", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = "/../../etc/passwd"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, testPlaceholder, w.Body.String())
	})
}

package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestSPAHandler(t *testing.T) {
	root := fstest.MapFS{
		"index.html":  {Data: []byte("<html>app</html>")},
		"app.js":      {Data: []byte("console.log('hi')")},
		"icons/a.png": {Data: []byte("png")},
	}
	handler := spaHandler(root)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{"root", http.MethodGet, "/", http.StatusOK, "<html>app</html>"},
		{"asset", http.MethodGet, "/app.js", http.StatusOK, "console.log('hi')"},
		{"client route falls back", http.MethodGet, "/history", http.StatusOK, "<html>app</html>"},
		{"dir without index falls back", http.MethodGet, "/icons/", http.StatusOK, "<html>app</html>"},
		{"traversal rejected", http.MethodGet, "/../../etc/passwd", http.StatusBadRequest, ""},
		{"post rejected", http.MethodPost, "/", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

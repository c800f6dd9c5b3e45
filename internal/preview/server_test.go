package preview

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "blog"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "admin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "blog", "hello.html"), []byte("<h1>hello</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "admin", "index.html"), []byte("admin area"), 0o644))
	return root
}

func TestServesFilesWithNoCacheHeaders(t *testing.T) {
	srv := NewServer(Config{Root: newSite(t)}, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/blog/hello.html", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "<h1>hello</h1>", rr.Body.String())
	assert.Equal(t, "no-cache, no-store, must-revalidate", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rr.Header().Get("Pragma"))
	assert.Equal(t, "0", rr.Header().Get("Expires"))
}

func TestDirectoryWithoutIndexIsNotListed(t *testing.T) {
	srv := NewServer(Config{Root: newSite(t)}, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/blog/", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthz(t *testing.T) {
	srv := NewServer(Config{Root: t.TempDir()}, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestAdminGate(t *testing.T) {
	root := newSite(t)

	tests := []struct {
		name     string
		password string
		user     string
		given    string
		auth     bool
		want     int
	}{
		{name: "unconfigured", password: "", auth: true, user: "a", given: "x", want: http.StatusNotFound},
		{name: "missing credentials", password: "s3cret", want: http.StatusUnauthorized},
		{name: "wrong password", password: "s3cret", auth: true, user: "admin", given: "nope", want: http.StatusUnauthorized},
		{name: "correct password", password: "s3cret", auth: true, user: "anyone", given: "s3cret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(Config{Root: root, AdminPassword: tt.password}, nil)
			req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
			if tt.auth {
				req.SetBasicAuth(tt.user, tt.given)
			}
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
			}
			if tt.want == http.StatusOK {
				assert.Contains(t, rr.Body.String(), "admin area")
			}
		})
	}
}

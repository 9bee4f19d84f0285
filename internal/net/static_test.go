package net

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestStaticHandler(t *testing.T) *StaticHandler {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>home</html>"), 0o644); err != nil {
		t.Fatalf("write index.html: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "assets"), 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "assets", "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatalf("write app.js: %v", err)
	}

	h, err := NewStaticHandler(root)
	if err != nil {
		t.Fatalf("NewStaticHandler: %v", err)
	}
	return h
}

func TestStaticHandler_ServesFile(t *testing.T) {
	h := newTestStaticHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/assets/app.js", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "console.log(1)" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}
	if cc := resp.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("expected Cache-Control: no-cache, got %q", cc)
	}
}

func TestStaticHandler_DirectoryResolvesToIndex(t *testing.T) {
	h := newTestStaticHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "<html>home</html>" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}
}

func TestStaticHandler_RejectsPathEscape(t *testing.T) {
	h := newTestStaticHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code == http.StatusOK {
		t.Fatalf("expected escape attempt to be rejected, got 200")
	}
}

func TestStaticHandler_RejectsUnsupportedMethod(t *testing.T) {
	h := newTestStaticHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/assets/app.js", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("expected Allow: GET, HEAD, got %q", allow)
	}
}

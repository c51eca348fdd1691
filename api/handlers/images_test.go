package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleImage(t *testing.T) {
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "Manual", "images")
	require.NoError(t, os.MkdirAll(imagesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "p13_full.png"), []byte("png-bytes"), 0o644))

	h := NewImageHandler(dir, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/source_image/Manual/images/p13_full.png", nil)
	rec := httptest.NewRecorder()
	h.HandleImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestHandleImageNotFound(t *testing.T) {
	h := NewImageHandler(t.TempDir(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/source_image/Manual/images/missing.png", nil)
	rec := httptest.NewRecorder()
	h.HandleImage(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleImageTraversalConfined(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	outputDir := filepath.Join(dir, "output")
	require.NoError(t, os.MkdirAll(outputDir, 0o755))

	h := NewImageHandler(outputDir, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/source_image/..%2Fsecret.txt", nil)
	rec := httptest.NewRecorder()
	h.HandleImage(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

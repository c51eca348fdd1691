package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dokuchat/dokuchat/types"
	"go.uber.org/zap"
)

// ImageHandler serves page images from the extracted document layout under
// GET /source_image/<stem>/images/<name>.
type ImageHandler struct {
	outputDir string
	logger    *zap.Logger
}

// NewImageHandler creates the image handler rooted at outputDir.
func NewImageHandler(outputDir string, logger *zap.Logger) *ImageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageHandler{
		outputDir: outputDir,
		logger:    logger.With(zap.String("component", "image_handler")),
	}
}

// HandleImage serves one image file. Paths are confined to the output dir.
func (h *ImageHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/source_image/")
	rel = filepath.Clean("/" + rel)[1:]
	if rel == "" || rel == "." {
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrInvalidRequest, "image path is required", h.logger)
		return
	}

	full := filepath.Join(h.outputDir, rel)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		WriteErrorMessage(w, r, http.StatusNotFound, types.ErrInvalidRequest, "image not found", h.logger)
		return
	}

	http.ServeFile(w, r, full)
}

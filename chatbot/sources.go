package chatbot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dokuchat/dokuchat/rag"
	"go.uber.org/zap"
)

// sourceSnippetCap bounds the preview text attached to each formatted source.
const sourceSnippetCap = 200

// FormattedSource is the API-facing shape of one answer source.
type FormattedSource struct {
	SourceFile     string  `json:"source_file"`
	Page           int     `json:"page"`
	RelevanceScore float64 `json:"relevance_score"`
	TextSnippet    string  `json:"text_snippet"`
	ImageURL       string  `json:"image_url,omitempty"`
}

// SourceFormatter converts retrieval hits into API sources, resolving the
// page image for each hit against the extracted document layout on disk.
type SourceFormatter struct {
	outputDir string
	baseURL   string
	logger    *zap.Logger
}

// NewSourceFormatter creates a formatter. outputDir is the extraction root
// holding one directory per document; baseURL is the externally visible
// server URL the image links are built from.
func NewSourceFormatter(outputDir, baseURL string, logger *zap.Logger) *SourceFormatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceFormatter{
		outputDir: outputDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger.With(zap.String("component", "source_formatter")),
	}
}

// Format renders hits as API sources, keeping the first hit per
// (source file, page) pair so the client never sees the same page twice.
func (f *SourceFormatter) Format(hits []rag.Hit) []FormattedSource {
	formatted := make([]FormattedSource, 0, len(hits))
	seen := make(map[string]bool, len(hits))

	for _, hit := range hits {
		sourceFile := hit.Metadata.SourceFile
		if sourceFile == "" {
			sourceFile = "Unknown.pdf"
		}
		key := fmt.Sprintf("%s_%d", sourceFile, hit.Metadata.Page)
		if seen[key] {
			continue
		}
		seen[key] = true

		formatted = append(formatted, FormattedSource{
			SourceFile:     sourceFile,
			Page:           hit.Metadata.Page,
			RelevanceScore: hit.RerankScore,
			TextSnippet:    snippet(hit.Text),
			ImageURL:       f.resolveImageURL(sourceFile, hit.Metadata.Page),
		})
	}
	return formatted
}

// resolveImageURL probes the extraction layout for the page image and returns
// its serving URL, or "" when no image exists. Extractor versions differ in
// how they name page images, hence the candidate list.
func (f *SourceFormatter) resolveImageURL(sourceFile string, page int) string {
	stem := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	imagesDir := filepath.Join(f.outputDir, stem, "images")

	candidates := []string{
		fmt.Sprintf("p%d_full.png", page),
		fmt.Sprintf("page_%d.png", page),
		fmt.Sprintf("%d.png", page),
		fmt.Sprintf("p%d_img_0.png", page),
	}
	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(imagesDir, name)); err == nil {
			return fmt.Sprintf("%s/source_image/%s/images/%s", f.baseURL, stem, name)
		}
	}
	return ""
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) > sourceSnippetCap {
		runes = runes[:sourceSnippetCap]
	}
	return string(runes) + "..."
}

package chatbot

import (
	"strings"
	"testing"

	"github.com/dokuchat/dokuchat/rag"
	"github.com/stretchr/testify/assert"
)

func TestBuildContextBlocks(t *testing.T) {
	hits := []rag.Hit{
		{Text: "isi halaman lima", Metadata: rag.HitMetadata{SourceFile: "Manual.pdf", Page: 5}},
		{Text: "isi halaman enam", Metadata: rag.HitMetadata{SourceFile: "Manual.pdf", Page: 6}},
	}

	got := BuildContextBlocks(hits)
	assert.Contains(t, got, "[Sumber: Manual.pdf Halaman 5]\nisi halaman lima")
	assert.Contains(t, got, "[Sumber: Manual.pdf Halaman 6]\nisi halaman enam")
	assert.Equal(t, 2, len(strings.Split(got, "\n\n")))
}

func TestBuildContextualPrompt(t *testing.T) {
	plain := BuildContextualPrompt("pertanyaan", "", "konteks")
	assert.Contains(t, plain, "Pertanyaan: pertanyaan")
	assert.Contains(t, plain, "Konteks:\nkonteks")
	assert.NotContains(t, plain, "RIWAYAT PERCAKAPAN")

	withHistory := BuildContextualPrompt("pertanyaan", "Pengguna: halo", "konteks")
	assert.Contains(t, withHistory, "RIWAYAT PERCAKAPAN SEBELUMNYA:\nPengguna: halo")
	assert.Contains(t, withHistory, "PERTANYAAN TERBARU PENGGUNA:\npertanyaan")
}

func TestBuildComparisonPromptPlaceholder(t *testing.T) {
	entities := []string{"dokumen a", "dokumen b"}
	contexts := map[string]string{"dokumen a": "isi dokumen a"}

	got := BuildComparisonPrompt("bandingkan", "", entities, contexts)
	assert.Contains(t, got, "INFORMASI DARI SUMBER PERTAMA (dokumen a):\nisi dokumen a")
	assert.Contains(t, got, "INFORMASI DARI SUMBER KEDUA (dokumen b):\nInformasi tidak ditemukan.")
}

func TestBuildComparisonPromptFramesFirstTwoEntities(t *testing.T) {
	entities := []string{"a", "b", "c"}
	contexts := map[string]string{"a": "ctx a", "b": "ctx b", "c": "ctx c"}

	got := BuildComparisonPrompt("bandingkan a dan b dan c", "", entities, contexts)
	assert.Contains(t, got, "SUMBER PERTAMA (a)")
	assert.Contains(t, got, "SUMBER KEDUA (b)")
	assert.NotContains(t, got, "ctx c")
}

func TestBuildSuggestionPromptCapsContext(t *testing.T) {
	long := strings.Repeat("x", 5000)
	got := BuildSuggestionPrompt("pertanyaan", long)
	assert.Contains(t, got, strings.Repeat("x", 2000))
	assert.NotContains(t, got, strings.Repeat("x", 2001))
}

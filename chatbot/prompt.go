package chatbot

import (
	"fmt"
	"strings"

	"github.com/dokuchat/dokuchat/rag"
)

// suggestionContextCap bounds the context embedded in the suggestion prompt.
const suggestionContextCap = 2000

// comparisonPlaceholder fills a comparison slot whose retrieval came back empty.
const comparisonPlaceholder = "Informasi tidak ditemukan."

// BuildContextBlocks renders hits as prompt context, one block per hit with a
// source attribution header so the model can cite where facts came from.
func BuildContextBlocks(hits []rag.Hit) string {
	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		header := fmt.Sprintf("[Sumber: %s Halaman %d]", hit.Metadata.SourceFile, hit.Metadata.Page)
		blocks = append(blocks, header+"\n"+hit.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildContextualPrompt is the standard answer prompt. With history it asks
// the model to resolve the newest question against the conversation; without
// history it is a plain question-over-context instruction.
func BuildContextualPrompt(query, history, context string) string {
	if history == "" {
		return fmt.Sprintf("Jawab pertanyaan berikut berdasarkan konteks yang diberikan.\n\nPertanyaan: %s\n\nKonteks:\n%s\n\nJawaban:", query, context)
	}
	return fmt.Sprintf(`Kamu adalah asisten AI yang membantu pengguna menjawab pertanyaan berdasarkan dokumen. Gunakan riwayat percakapan untuk memahami konteks dari pertanyaan terbaru pengguna.
---
RIWAYAT PERCAKAPAN SEBELUMNYA:
%s
---
PERTANYAAN TERBARU PENGGUNA:
%s
---
INFORMASI DARI DOKUMEN YANG RELEVAN:
%s
---
Berdasarkan riwayat dan informasi dokumen di atas, jawablah pertanyaan terbaru pengguna secara jelas dan ringkas. Jika pertanyaan terkait dengan topik sebelumnya, jelaskan hubungannya.`, history, query, context)
}

// BuildAggregationPrompt is the enumeration prompt: extract every matching
// item across the whole context and answer as a flat list.
func BuildAggregationPrompt(query, context string) string {
	return fmt.Sprintf(`Tugas Anda adalah menjadi agregator informasi yang teliti. Dari kumpulan teks dokumen di bawah ini, ekstrak SEMUA item yang relevan dengan permintaan pengguna.
Permintaan Pengguna: '%s'
Konteks Dokumen:
%s
INSTRUKSI:
1. Baca SEMUA konteks dengan sangat teliti. Jangan lewatkan informasi.
2. Temukan dan kumpulkan SEMUA entitas (nama, topik, item, dll.) yang cocok dengan permintaan.
3. Jawaban harus berupa daftar yang lengkap dan komprehensif.
4. Jika ada duplikat, gabungkan menjadi satu.
5. Keluarkan jawaban HANYA dalam bentuk daftar (bullet points) tanpa teks pembuka atau penutup.
Contoh format jawaban:
- Item A
- Item B
- Item C
`, query, context)
}

// BuildComparisonPrompt asks for a structured comparison of the first two
// entities. Entities beyond the second still contribute retrieval context to
// the sources but the analysis frames exactly two subjects.
func BuildComparisonPrompt(query, history string, entities []string, contexts map[string]string) string {
	first, second := entities[0], entities[1]
	context1 := contexts[first]
	if context1 == "" {
		context1 = comparisonPlaceholder
	}
	context2 := contexts[second]
	if context2 == "" {
		context2 = comparisonPlaceholder
	}
	return fmt.Sprintf(`Kamu adalah asisten AI yang ahli dalam menganalisis dokumen. Gunakan riwayat percakapan untuk memahami konteks dari permintaan perbandingan ini.
---
RIWAYAT PERCAKAPAN SEBELUMNYA:
%s
---
PERMINTAAN PERBANDINGAN PENGGUNA:
%s
---
INFORMASI DARI SUMBER PERTAMA (%s):
%s
---
INFORMASI DARI SUMBER KEDUA (%s):
%s
---
Berdasarkan riwayat dan informasi di atas, buatlah analisis perbandingan yang terstruktur dengan jelas dalam Bahasa Indonesia:
1.  **Persamaan Utama:** Jelaskan titik-titik yang sama antara kedua sumber.
2.  **Perbedaan Kunci:** Jelaskan perbedaan signifikan secara point-by-point.
3.  **Analisis Perubahan/Tren:** Jelaskan implikasi atau tren dari perbedaan tersebut.
Jawaban harus ringkas, objektif, dan hanya berdasarkan informasi yang diberikan.`, history, query, first, context1, second, context2)
}

// BuildSuggestionPrompt asks the model for three follow-up questions as a
// literal list. The context is capped so suggestions stay cheap relative to
// the answer call.
func BuildSuggestionPrompt(query, context string) string {
	runes := []rune(context)
	if len(runes) > suggestionContextCap {
		context = string(runes[:suggestionContextCap])
	}
	return fmt.Sprintf(`Anda adalah asisten AI. Tugas Anda adalah membuat 3 (tiga) saran pertanyaan lanjutan yang relevan berdasarkan konteks yang diberikan.
ATURAN PENTING:
1. Jawaban HARUS berupa sebuah list yang valid.
2. Setiap elemen dalam list adalah sebuah string yang merupakan pertanyaan.
3. Jangan gunakan nomor atau format lain, hanya list.
4. Pertanyaan harus spesifik dan bisa dijawab oleh dokumen.
CONTOH FORMAT YANG BENAR:
['Apa topik utama dari dokumen X?', 'Kebijakan apa yang berubah di tahun Y?', 'Siapa yang bertanggung jawab atas Z?']
---
Pertanyaan Pengguna: %s
---
Konteks Dokumen Relevan:
%s
---
Saran Pertanyaan Lanjutan (HANYA keluarkan list-nya saja, tanpa teks tambahan):
`, query, context)
}

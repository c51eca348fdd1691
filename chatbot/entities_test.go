package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractComparisonEntities(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "dan separator strips bandingkan",
			query: "bandingkan kebijakan A dan kebijakan B",
			want:  []string{"kebijakan a", "kebijakan b"},
		},
		{
			name:  "vs separator",
			query: "laporan 2022 vs laporan 2023",
			want:  []string{"laporan 2022", "laporan 2023"},
		},
		{
			name:  "dengan separator",
			query: "bandingkan manual lama dengan manual baru",
			want:  []string{"manual lama", "manual baru"},
		},
		{
			name:  "comma separator",
			query: "bandingkan dokumen A, dokumen B",
			want:  []string{"dokumen a", "dokumen b"},
		},
		{
			name:  "range fallback",
			query: "jelaskan perubahan dari versi 1 ke versi 2",
			want:  []string{"versi 1", "versi 2"},
		},
		{
			name:  "no separator",
			query: "bandingkan dokumennya",
			want:  []string{},
		},
		{
			name:  "duplicate entities collapse",
			query: "bandingkan dokumen A dan dokumen a",
			want:  []string{"dokumen a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractComparisonEntities(tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

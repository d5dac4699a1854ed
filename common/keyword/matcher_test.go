package keyword

import (
	"testing"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	active := []models.Keyword{
		{ID: "1", Text: "Korupsi", IsActive: true},
		{ID: "2", Text: "banjir", IsActive: true},
		{ID: "3", Text: "pemilu", IsActive: false},
		{ID: "4", Text: "  ", IsActive: true},
		{ID: "5", Text: "korupsi", IsActive: true},
	}

	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{"case insensitive", "KPK Tangkap Tersangka KORUPSI Dana Desa", []string{"Korupsi"}},
		{"multiple keywords", "Korupsi proyek tanggul saat banjir", []string{"Korupsi", "banjir"}},
		{"inactive ignored", "Jadwal Pemilu 2024", nil},
		{"no match", "Harga cabai turun", nil},
		{"empty title", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Texts(Match(tt.title, active))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromTexts(t *testing.T) {
	got := FromTexts([]string{" banjir ", "", "gempa"})
	assert.Len(t, got, 2)
	assert.Equal(t, "banjir", got[0].Text)
	assert.True(t, got[1].IsActive)
	assert.Empty(t, got[1].ID)
}

// Package keyword filters listing titles against the active keyword list.
package keyword

import (
	"strings"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/samber/lo"
)

// Match returns the active keywords whose text appears in title, compared
// case-insensitively. Inactive and blank keywords never match, and a keyword
// text is reported once even if it is listed twice.
func Match(title string, active []models.Keyword) []models.Keyword {
	haystack := strings.ToLower(title)
	if strings.TrimSpace(haystack) == "" {
		return nil
	}

	matched := lo.Filter(active, func(k models.Keyword, _ int) bool {
		needle := strings.ToLower(strings.TrimSpace(k.Text))
		return k.IsActive && needle != "" && strings.Contains(haystack, needle)
	})

	return lo.UniqBy(matched, func(k models.Keyword) string {
		return strings.ToLower(strings.TrimSpace(k.Text))
	})
}

// Texts returns the keyword texts in order.
func Texts(keywords []models.Keyword) []string {
	return lo.Map(keywords, func(k models.Keyword, _ int) string {
		return k.Text
	})
}

// FromTexts builds active keywords without store identity, used when the
// caller supplies an explicit keyword list.
func FromTexts(texts []string) []models.Keyword {
	texts = lo.Filter(texts, func(s string, _ int) bool { return strings.TrimSpace(s) != "" })
	return lo.Map(texts, func(s string, _ int) models.Keyword {
		return models.Keyword{Text: strings.TrimSpace(s), IsActive: true}
	})
}

// Package extractor pulls the readable body text out of an article page.
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

// DefaultMinLength is the shortest text accepted from a content selector.
const DefaultMinLength = 100

// DefaultNoiseSelectors are removed from every content container before text
// is collected.
var DefaultNoiseSelectors = []string{
	"script", "style", "noscript", "iframe", "form", "button",
	"figure", "figcaption", "aside", "nav",
	".ads", ".advertisement", "[class*='ads-']", "[id*='div-gpt-ad']",
	".baca-juga", ".related", ".share", ".social-share", ".tags", ".video",
}

// DefaultNoisePhrases drop a paragraph when it starts with any of them.
var DefaultNoisePhrases = []string{
	"baca juga", "advertisement", "simak video", "scroll to continue",
	"lihat juga", "artikel ini telah tayang", "dapatkan update berita",
}

// Rules configure extraction for one portal.
type Rules struct {
	ContentSelectors []string
	NoiseSelectors   []string
	NoisePhrases     []string
	MinLength        int
}

// Extractor applies Rules to article documents.
type Extractor struct {
	rules Rules
}

// New builds an Extractor, filling unset rule fields with defaults.
func New(rules Rules) *Extractor {
	if rules.MinLength <= 0 {
		rules.MinLength = DefaultMinLength
	}
	rules.NoiseSelectors = lo.Uniq(append(append([]string{}, DefaultNoiseSelectors...), rules.NoiseSelectors...))
	rules.NoisePhrases = lo.Map(
		lo.Uniq(append(append([]string{}, DefaultNoisePhrases...), rules.NoisePhrases...)),
		func(p string, _ int) string { return strings.ToLower(p) },
	)
	return &Extractor{rules: rules}
}

// Extract returns the article body. It never returns an empty string: when no
// selector yields enough text it falls back to every paragraph on the page,
// and finally to title.
func (e *Extractor) Extract(doc *goquery.Document, title string) string {
	if doc == nil {
		return strings.TrimSpace(title)
	}

	if sel := e.ContentSelection(doc); sel != nil {
		return e.paragraphText(sel)
	}

	body := doc.Selection.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body = body.Clone()
	body.Find("header, footer, nav, aside").Remove()
	if text := e.paragraphText(e.clean(body)); text != "" {
		return text
	}

	return strings.TrimSpace(title)
}

// ContentSelection returns a cleaned copy of the first content container whose
// text reaches the minimum length, or nil.
func (e *Extractor) ContentSelection(doc *goquery.Document) *goquery.Selection {
	for _, selector := range e.rules.ContentSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		cleaned := e.clean(found.Clone())
		if len(e.paragraphText(cleaned)) >= e.rules.MinLength {
			return cleaned
		}
	}
	return nil
}

// clean removes noise from sel in place. Callers pass a clone so the source
// document stays intact.
func (e *Extractor) clean(sel *goquery.Selection) *goquery.Selection {
	for _, noise := range e.rules.NoiseSelectors {
		sel.Find(noise).Remove()
	}
	return sel
}

func (e *Extractor) paragraphText(sel *goquery.Selection) string {
	var paragraphs []string
	collect := func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if text == "" || e.isNoise(text) {
			return
		}
		paragraphs = append(paragraphs, text)
	}

	sel.Find("p").Each(collect)
	if len(paragraphs) == 0 {
		collect(0, sel)
	}
	return strings.Join(paragraphs, "\n\n")
}

func (e *Extractor) isNoise(text string) bool {
	lower := strings.ToLower(text)
	return lo.SomeBy(e.rules.NoisePhrases, func(p string) bool {
		return strings.HasPrefix(lower, p)
	})
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

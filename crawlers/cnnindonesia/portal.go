// Package cnnindonesia registers the CNN Indonesia national index, whose
// pagination links are rendered by JavaScript.
package cnnindonesia

import (
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
)

var Adapter = crawler.PortalAdapter{
	Name:         "cnnindonesia",
	BaseURL:      "https://www.cnnindonesia.com",
	ListingURL:   "https://www.cnnindonesia.com/nasional/indeks/3",
	Mode:         fetch.ModeBrowser,
	Pagination:   crawler.PaginationClickLink,
	NextSelector: `a[dtr-act="halaman selanjutnya"], a[rel="next"]`,
	WaitSelector: "div.nhl-list article",
	Listing: fetch.SelectorSet{
		Item:  "div.nhl-list article",
		Title: "h2",
		Link:  "a",
		Date:  "span.text-xs",
	},
	FallbackListing: []fetch.SelectorSet{
		{Item: "div.list.media_rows article", Title: "h2.title", Link: "a"},
	},
	ContentSelectors: []string{"div.detail-text", "div.detail-wrap"},
	NoiseSelectors:   []string{".paradetail", ".linksisip", ".inbetween_ads", ".skybanner", "table.topiksisip"},
	NoisePhrases:     []string{"[gambas:video cnn]", "(ugo/", "baca halaman selanjutnya"},
	PromoMarkers:     []string{"/tv/", "/foto/", "/infografis/", "/gaya-hidup/", "terpopuler"},
	ArticleDateSelectors: []crawler.DateSource{
		{Selector: `meta[name="publishdate"]`, Attr: "content"},
		{Selector: "div.text-cnn_grey.text-sm"},
	},
}

func init() {
	crawler.MustRegisterPortal(Adapter)
}

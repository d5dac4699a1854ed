// Package kompas registers the Kompas.com news index.
package kompas

import (
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
)

var Adapter = crawler.PortalAdapter{
	Name:       "kompas",
	BaseURL:    "https://www.kompas.com",
	ListingURL: "https://indeks.kompas.com/?site=news",
	Mode:       fetch.ModeStatic,
	Pagination: crawler.PaginationPageParam,
	PageParam:  "page",
	FirstPage:  1,
	Listing: fetch.SelectorSet{
		Item:  "div.articleItem",
		Title: "h2.articleTitle",
		Link:  "a.article-link",
		Date:  "div.articlePost-date",
	},
	FallbackListing: []fetch.SelectorSet{
		{Item: "div.article__list", Title: "h3.article__title a", Link: "h3.article__title a", Date: "div.article__date"},
	},
	ContentSelectors: []string{"div.read__content", "div.clearfix .read__content", "article.read__article"},
	NoiseSelectors:   []string{".inner-link-baca-juga", ".kompasidRec", ".ads-on-body", ".read__paging", ".photo__caption"},
	NoisePhrases:     []string{"kompas.com -", "dapatkan update berita pilihan", "simak breaking news"},
	PromoMarkers:     []string{"/jeo/", "/sponsored/", "/advertorial/", "kompas-tv", "terpopuler"},
	ArticleDateSelectors: []crawler.DateSource{
		{Selector: `meta[name="content_PublishedDate"]`, Attr: "content"},
		{Selector: "div.read__time"},
	},
}

func init() {
	crawler.MustRegisterPortal(Adapter)
}

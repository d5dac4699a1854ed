// Package liputan6 registers the Liputan6 news index.
package liputan6

import (
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
)

var Adapter = crawler.PortalAdapter{
	Name:       "liputan6",
	BaseURL:    "https://www.liputan6.com",
	ListingURL: "https://www.liputan6.com/news/indeks",
	Mode:       fetch.ModeStatic,
	Pagination: crawler.PaginationPageParam,
	PageParam:  "page",
	FirstPage:  1,
	Listing: fetch.SelectorSet{
		Item:      "article.articles--rows--item",
		Title:     "h4.articles--rows--item__title a",
		TitleAttr: "title",
		Link:      "h4.articles--rows--item__title a",
		Date:      "time.articles--rows--item__time",
		DateAttr:  "datetime",
	},
	FallbackListing: []fetch.SelectorSet{
		{Item: "article.articles--iridescent-list--item", Title: "h4 a", Link: "h4 a", Date: "time", DateAttr: "datetime"},
	},
	ContentSelectors: []string{"div.article-content-body__item-content", "div.article-content-body"},
	NoiseSelectors:   []string{".baca-juga-collections", ".article-content-body__item-media", ".promo-video"},
	NoisePhrases:     []string{"liputan6.com, jakarta -", "saksikan video pilihan", "simak juga video"},
	PromoMarkers:     []string{"/tag/", "/showbiz/", "/regional/read/populer", "populer"},
	ArticleDateSelectors: []crawler.DateSource{
		{Selector: `meta[property="article:published_time"]`, Attr: "content"},
		{Selector: "time.read-page--header--author__datetime", Attr: "datetime"},
	},
}

func init() {
	crawler.MustRegisterPortal(Adapter)
}

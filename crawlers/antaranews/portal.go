// Package antaranews registers the ANTARA News "terkini" feed.
package antaranews

import (
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
)

var Adapter = crawler.PortalAdapter{
	Name:       "antaranews",
	BaseURL:    "https://www.antaranews.com",
	ListingURL: "https://www.antaranews.com/terkini/" + crawler.PagePlaceholder,
	Mode:       fetch.ModeStatic,
	Pagination: crawler.PaginationPageParam,
	FirstPage:  1,
	Listing: fetch.SelectorSet{
		Item:  "div.card__post",
		Title: "h2.card__post__title a",
		Link:  "h2.card__post__title a",
		Date:  "span.text-secondary",
	},
	FallbackListing: []fetch.SelectorSet{
		{Item: "div.latest-news article, div.post_list article", Title: "h3 a", Link: "h3 a", Date: "span"},
	},
	ContentSelectors: []string{"div.wrap__article-detail-content", "div.post-content", "div#content"},
	NoiseSelectors:   []string{"p.text-muted", "span.baca-juga", ".wrap__article-detail-info", ".quote__article"},
	NoisePhrases:     []string{"pewarta:", "editor:", "copyright © antara"},
	PromoMarkers:     []string{"/infografik/", "/foto/", "/video/", "/berita-terpopuler", "terpopuler"},
	ArticleDateSelectors: []crawler.DateSource{
		{Selector: `meta[property="article:published_time"]`, Attr: "content"},
		{Selector: "div.wrap__article-detail-info span.text-secondary"},
	},
}

func init() {
	crawler.MustRegisterPortal(Adapter)
}

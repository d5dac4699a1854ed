// Package tribunnews registers the Tribunnews latest feed. Older items are
// loaded by a JavaScript "load more" button.
package tribunnews

import (
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
)

var Adapter = crawler.PortalAdapter{
	Name:         "tribunnews",
	BaseURL:      "https://www.tribunnews.com",
	ListingURL:   "https://www.tribunnews.com/news",
	Mode:         fetch.ModeBrowser,
	Pagination:   crawler.PaginationClickButton,
	NextSelector: "a#loadmore, div.loadmore a",
	WaitSelector: "ul#latestul li",
	Listing: fetch.SelectorSet{
		Item:      "ul#latestul li.art-list",
		Title:     "h3 a",
		TitleAttr: "title",
		Link:      "h3 a",
		Date:      "time.foot",
	},
	FallbackListing: []fetch.SelectorSet{
		{Item: "div.lsi li", Title: "h3 a", Link: "h3 a", Date: "time"},
	},
	ContentSelectors: []string{"div.side-article.txt-article", "div.txt-article", "div#article_con"},
	NoiseSelectors:   []string{".baca", ".ads-placeholder", "#bacajuga", "p.baca", ".mb10.f14.ovh"},
	NoisePhrases:     []string{"baca selengkapnya", "artikel ini telah tayang di", "(tribunnews.com/"},
	PromoMarkers:     []string{"/tribunnewswiki/", "/tribunners/", "/video/", "/populer", "superskor"},
	ArticleDateSelectors: []crawler.DateSource{
		{Selector: `meta[name="content_PublishedDate"]`, Attr: "content"},
		{Selector: "time"},
	},
}

func init() {
	crawler.MustRegisterPortal(Adapter)
}

// Package detik registers the detikNews index.
package detik

import (
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
)

var Adapter = crawler.PortalAdapter{
	Name:       "detik",
	BaseURL:    "https://news.detik.com",
	ListingURL: "https://news.detik.com/indeks/" + crawler.PagePlaceholder,
	Mode:       fetch.ModeStatic,
	Pagination: crawler.PaginationPageParam,
	FirstPage:  1,
	Listing: fetch.SelectorSet{
		Item:     "article.list-content__item",
		Title:    "h3.media__title a",
		Link:     "h3.media__title a",
		Date:     "div.media__date span",
		DateAttr: "title",
	},
	FallbackListing: []fetch.SelectorSet{
		{Item: "div.list-content article", Title: "h2, h3", Link: "a", Date: "span.date"},
	},
	ContentSelectors: []string{"div.detail__body-text", "div.itp_bodycontent", "div#detikdetailtext"},
	NoiseSelectors:   []string{".para_caption", ".detail__body-tag", ".staticdetail_container", ".parallaxindetail", ".lihatjg", "table.linksisip"},
	NoisePhrases:     []string{"(idn/", "(rdp/", "simak juga", "[gambas:video"},
	PromoMarkers:     []string{"/foto-news/", "/detiktv/", "/infografis/", "adsradar", "/terpopuler", "?tag_from=wp_"},
	ArticleDateSelectors: []crawler.DateSource{
		{Selector: `meta[name="publishdate"]`, Attr: "content"},
		{Selector: "div.detail__date"},
	},
}

func init() {
	crawler.MustRegisterPortal(Adapter)
}

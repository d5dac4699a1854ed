package crawlers

import (
	"strings"
	"testing"

	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/crawlers/detik"
	"github.com/LexiconIndonesia/news-portal-crawler/crawlers/tribunnews"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInPortalsRegistered(t *testing.T) {
	for _, name := range []string{"antaranews", "cnnindonesia", "detik", "kompas", "liputan6", "tribunnews"} {
		adapter, err := crawler.GetPortal(name)
		require.NoError(t, err, name)
		assert.NoError(t, adapter.Validate(), name)
		assert.NotEmpty(t, adapter.ContentSelectors, name)
		assert.NotEmpty(t, adapter.PromoMarkers, name)
	}
}

// candidates runs the listing extraction the orchestrator performs on a
// fetched page.
func candidates(t *testing.T, adapter crawler.PortalAdapter, html string) []models.Candidate {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	var out []models.Candidate
	for _, set := range adapter.ListingSelectors() {
		found := fetch.ExtractCandidates(doc.Selection, set)
		if len(found) == 0 {
			continue
		}
		for _, c := range found {
			c.Link = adapter.ResolveURL(c.Link)
			if c.Link != "" && !adapter.IsPromotional(c) {
				out = append(out, c)
			}
		}
		break
	}
	return out
}

func TestDetikListing(t *testing.T) {
	html := `<html><body><div class="list-content">
		<article class="list-content__item">
			<h3 class="media__title"><a href="https://news.detik.com/berita/d-7000001/kpk-tahan-bupati">KPK Tahan Bupati Terkait Korupsi</a></h3>
			<div class="media__date"><span title="Senin, 04 Mar 2024 10:15 WIB">2 jam yang lalu</span></div>
		</article>
		<article class="list-content__item">
			<h3 class="media__title"><a href="/berita/d-7000002/banjir-rob">Banjir Rob Rendam Pesisir</a></h3>
			<div class="media__date"><span title="Senin, 04 Mar 2024 09:00 WIB">3 jam yang lalu</span></div>
		</article>
		<article class="list-content__item">
			<h3 class="media__title"><a href="https://news.detik.com/foto-news/d-7000003/galeri">Galeri Foto Korupsi</a></h3>
		</article>
	</div></body></html>`

	got := candidates(t, detik.Adapter, html)
	require.Len(t, got, 2)

	assert.Equal(t, "KPK Tahan Bupati Terkait Korupsi", got[0].Title)
	assert.Equal(t, "https://news.detik.com/berita/d-7000001/kpk-tahan-bupati", got[0].Link)
	assert.Equal(t, "Senin, 04 Mar 2024 10:15 WIB", got[0].RawDate)

	assert.Equal(t, "https://news.detik.com/berita/d-7000002/banjir-rob", got[1].Link)
}

func TestDetikArticleDate(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><head><meta name="publishdate" content="2024/03/04 10:15:00"></head><body><div class="detail__date">Senin, 04 Mar 2024 10:15 WIB</div></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "2024/03/04 10:15:00", detik.Adapter.ArticleDate(doc))
}

func TestTribunnewsListing(t *testing.T) {
	html := `<html><body><ul id="latestul">
		<li class="art-list">
			<h3><a href="https://www.tribunnews.com/nasional/2024/03/04/kejagung-periksa-saksi" title="Kejagung Periksa Saksi Kasus Korupsi Timah">Kejagung Periksa Saksi...</a></h3>
			<time class="foot">Senin, 4 Maret 2024 11:20 WIB</time>
		</li>
		<li class="art-list">
			<h3><a href="https://www.tribunnews.com/video/2024/03/04/cuplikan" title="Video Cuplikan">Video</a></h3>
		</li>
		<li class="art-list">
			<h3><a href="javascript:void(0)" title="Muat lainnya">Muat</a></h3>
		</li>
	</ul></body></html>`

	got := candidates(t, tribunnews.Adapter, html)
	require.Len(t, got, 1)
	assert.Equal(t, "Kejagung Periksa Saksi Kasus Korupsi Timah", got[0].Title)
	assert.Equal(t, "https://www.tribunnews.com/nasional/2024/03/04/kejagung-periksa-saksi", got[0].Link)
	assert.Equal(t, "Senin, 4 Maret 2024 11:20 WIB", got[0].RawDate)
}

func TestPortalForURLResolvesBuiltIns(t *testing.T) {
	adapter, err := crawler.PortalForURL("https://www.tribunnews.com/nasional")
	require.NoError(t, err)
	assert.Equal(t, "tribunnews", adapter.Name)

	adapter, err = crawler.PortalForURL("liputan6.com")
	require.NoError(t, err)
	assert.Equal(t, "liputan6", adapter.Name)
}

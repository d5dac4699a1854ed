package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/dedup"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html><head>
<meta property="article:published_time" content="2024-01-15T09:00:00+07:00">
</head><body><div class="content">
<p>Komisi Pemberantasan Korupsi menetapkan tiga tersangka baru dalam kasus pengadaan barang dan jasa di lingkungan pemerintah daerah.</p>
<div class="ads">Iklan</div>
</div></body></html>`

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSession struct {
	mode       fetch.Mode
	listings   map[string][]models.Candidate
	articles   map[string]string
	openErrs   map[string]error
	opened     []string
	closed     bool
	clock      *fakeClock
	perOpen    time.Duration
	clickPages [][]models.Candidate
}

func (s *fakeSession) Open(_ context.Context, url string) (fetch.Page, error) {
	s.opened = append(s.opened, url)
	if s.clock != nil {
		s.clock.Advance(s.perOpen)
	}
	if err, ok := s.openErrs[url]; ok {
		return nil, err
	}
	if html, ok := s.articles[url]; ok {
		return &fakePage{url: url, html: html}, nil
	}
	if s.clickPages != nil {
		return &fakePage{url: url, batches: s.clickPages}, nil
	}
	return &fakePage{url: url, candidates: s.listings[url]}, nil
}

func (s *fakeSession) Mode() fetch.Mode { return s.mode }

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSession) articleOpens() []string {
	var out []string
	for _, u := range s.opened {
		if _, ok := s.articles[u]; ok {
			out = append(out, u)
		}
	}
	return out
}

type fakePage struct {
	url        string
	html       string
	candidates []models.Candidate
	batches    [][]models.Candidate
	clicks     int
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Extract(_ context.Context, set fetch.SelectorSet) ([]models.Candidate, error) {
	if set.Item != ".item" {
		return nil, nil
	}
	if p.batches != nil {
		var all []models.Candidate
		for i := 0; i <= p.clicks && i < len(p.batches); i++ {
			all = append(all, p.batches[i]...)
		}
		return all, nil
	}
	return p.candidates, nil
}

func (p *fakePage) Document(context.Context) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.html))
}

func (p *fakePage) Click(context.Context, string) error {
	if p.batches == nil || p.clicks+1 >= len(p.batches) {
		return fmt.Errorf("%w: .more", fetch.ErrSelectorNotFound)
	}
	p.clicks++
	return nil
}

func (p *fakePage) WaitForSelector(context.Context, string, time.Duration) error { return nil }
func (p *fakePage) WaitIdle(context.Context, time.Duration) error                { return nil }
func (p *fakePage) Close() error                                                  { return nil }

type memArticles struct {
	existing map[string]bool
	saved    []models.ScrapedArticle
	lookups  map[string]int
	saveErr  map[string]error
}

func newMemArticles(existing ...string) *memArticles {
	m := &memArticles{existing: map[string]bool{}, lookups: map[string]int{}, saveErr: map[string]error{}}
	for _, l := range existing {
		m.existing[dedup.NormalizeURL(l)] = true
	}
	return m
}

func (m *memArticles) FindExisting(_ context.Context, link, _ string) (bool, error) {
	m.lookups[dedup.NormalizeURL(link)]++
	return m.existing[dedup.NormalizeURL(link)], nil
}

func (m *memArticles) SaveArticle(_ context.Context, a models.ScrapedArticle) (string, error) {
	if err, ok := m.saveErr[a.Link]; ok {
		return "", err
	}
	m.saved = append(m.saved, a)
	return fmt.Sprintf("article-%d", len(m.saved)), nil
}

type memKeywords struct {
	keywords   []models.Keyword
	increments map[string]int
	loads      int
}

func (m *memKeywords) GetActiveKeywords(context.Context) ([]models.Keyword, error) {
	m.loads++
	return m.keywords, nil
}

func (m *memKeywords) IncrementMatchCount(_ context.Context, id string) error {
	m.increments[id]++
	return nil
}

type recordingHook struct {
	seen []string
	err  error
}

func (h *recordingHook) AfterSave(_ context.Context, a models.ScrapedArticle, doc *goquery.Document) error {
	if doc != nil {
		h.seen = append(h.seen, a.ID)
	}
	return h.err
}

func testAdapter() PortalAdapter {
	return PortalAdapter{
		Name:             "testportal",
		BaseURL:          "https://news.example.com",
		ListingURL:       "https://news.example.com/indeks",
		Mode:             fetch.ModeStatic,
		Pagination:       PaginationPageParam,
		PageParam:        "page",
		Listing:          fetch.SelectorSet{Item: ".item", Title: "a", Link: "a"},
		ContentSelectors: []string{".content"},
		PromoMarkers:     []string{"/advertorial/"},
		ArticleDateSelectors: []DateSource{
			{Selector: `meta[property="article:published_time"]`, Attr: "content"},
		},
	}
}

func testKeywords() *memKeywords {
	return &memKeywords{
		keywords: []models.Keyword{
			{ID: "kw-korupsi", Text: "korupsi", IsActive: true},
			{ID: "kw-banjir", Text: "banjir", IsActive: true},
			{ID: "kw-off", Text: "pemilu", IsActive: false},
		},
		increments: map[string]int{},
	}
}

func opener(s *fakeSession) SessionOpener {
	return func(context.Context, fetch.Mode) (fetch.Session, error) { return s, nil }
}

func noSleep(context.Context, time.Duration) error { return nil }

func tenCandidates() []models.Candidate {
	titles := []string{
		"KPK Usut Korupsi Dana Desa",
		"Harga Cabai Turun",
		"Banjir Rendam Ribuan Rumah",
		"Timnas Menang Tipis",
		"Korupsi Proyek Jalan Tol Terungkap",
		"Cuaca Cerah Sepanjang Pekan",
		"Pameran Otomotif Dibuka",
		"Festival Kuliner Digelar",
		"Bursa Saham Menguat",
		"Konser Amal Sukses",
	}
	out := make([]models.Candidate, len(titles))
	for i, title := range titles {
		out[i] = models.Candidate{Title: title, Link: fmt.Sprintf("/berita/%d", i+1)}
	}
	return out
}

func TestRunTwoPagePortal(t *testing.T) {
	adapter := testAdapter()
	session := &fakeSession{
		mode: fetch.ModeStatic,
		listings: map[string][]models.Candidate{
			adapter.PageURL(1): tenCandidates(),
			adapter.PageURL(2): nil,
		},
		articles: map[string]string{
			"https://news.example.com/berita/1": articleHTML,
			"https://news.example.com/berita/3": articleHTML,
			"https://news.example.com/berita/5": articleHTML,
		},
	}
	articles := newMemArticles("https://news.example.com/berita/5")
	keywords := testKeywords()
	hook := &recordingHook{}

	o := NewOrchestrator(adapter, opener(session), articles, keywords,
		WithSleeper(noSleep), WithSaveHooks(hook))
	result := o.Run(context.Background(), Request{RunID: "run-1", MaxPages: 10, DelayMs: 100})

	assert.True(t, result.Success)
	assert.Equal(t, 10, result.TotalScraped)
	assert.Equal(t, 2, result.NewItems)
	assert.Equal(t, 1, result.Duplicates)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 2)

	// unmatched and duplicate candidates are never fetched
	assert.ElementsMatch(t, []string{
		"https://news.example.com/berita/1",
		"https://news.example.com/berita/3",
	}, session.articleOpens())
	assert.Equal(t, []string{adapter.PageURL(1), "https://news.example.com/berita/1", "https://news.example.com/berita/3", adapter.PageURL(2)}, session.opened)
	assert.True(t, session.closed)

	first := result.Items[0]
	assert.Equal(t, "article-1", first.ID)
	assert.Equal(t, "testportal", first.Portal)
	assert.Equal(t, []string{"korupsi"}, first.MatchedKeywords)
	assert.Contains(t, first.Body, "Komisi Pemberantasan Korupsi")
	assert.NotContains(t, first.Body, "Iklan")
	assert.Equal(t, 2024, first.PublishedDate.Year())
	assert.Equal(t, time.January, first.PublishedDate.Month())
	assert.Equal(t, 15, first.PublishedDate.Day())

	assert.Equal(t, 1, keywords.increments["kw-korupsi"])
	assert.Equal(t, 1, keywords.increments["kw-banjir"])
	assert.Equal(t, []string{"article-1", "article-2"}, hook.seen)

	for link, n := range articles.lookups {
		assert.LessOrEqual(t, n, 1, "store queried more than once for %s", link)
	}
}

func TestRunStopsWhenTimeBudgetExhausted(t *testing.T) {
	adapter := testAdapter()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	session := &fakeSession{
		mode:    fetch.ModeStatic,
		clock:   clock,
		perOpen: 2 * time.Second,
		listings: map[string][]models.Candidate{
			adapter.PageURL(1): {{Title: "Korupsi Bansos", Link: "/berita/1"}},
			adapter.PageURL(2): {{Title: "Korupsi Lagi", Link: "/berita/2"}},
		},
		articles: map[string]string{
			"https://news.example.com/berita/1": articleHTML,
			"https://news.example.com/berita/2": articleHTML,
		},
	}

	o := NewOrchestrator(adapter, opener(session), newMemArticles(), testKeywords(),
		WithSleeper(noSleep), WithClock(clock.Now))
	result := o.Run(context.Background(), Request{MaxPages: 100, TimeBudget: time.Second})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.NewItems)
	assert.Empty(t, result.Errors)
	assert.NotContains(t, session.opened, adapter.PageURL(2))
}

func TestRunFailsWithoutKeywordsBeforeFetching(t *testing.T) {
	opened := false
	open := func(context.Context, fetch.Mode) (fetch.Session, error) {
		opened = true
		return &fakeSession{}, nil
	}
	keywords := &memKeywords{keywords: []models.Keyword{{ID: "1", Text: "pemilu", IsActive: false}}, increments: map[string]int{}}

	result := NewOrchestrator(testAdapter(), open, newMemArticles(), keywords).Run(context.Background(), Request{MaxPages: 3})

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], ErrNoActiveKeywords.Error())
	assert.False(t, opened)
}

func TestRunWithExplicitKeywords(t *testing.T) {
	adapter := testAdapter()
	session := &fakeSession{
		mode: fetch.ModeStatic,
		listings: map[string][]models.Candidate{
			adapter.PageURL(1): tenCandidates(),
		},
		articles: map[string]string{
			"https://news.example.com/berita/4": articleHTML,
		},
	}
	keywords := testKeywords()

	o := NewOrchestrator(adapter, opener(session), newMemArticles(), keywords, WithSleeper(noSleep))
	result := o.Run(context.Background(), Request{MaxPages: 1, Keywords: []string{"TIMNAS"}})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.NewItems)
	assert.Equal(t, []string{"TIMNAS"}, result.Items[0].MatchedKeywords)
	assert.Zero(t, keywords.loads)
	assert.Empty(t, keywords.increments)
}

func TestRunExcludesPromotionalAndResolvesLinks(t *testing.T) {
	adapter := testAdapter()
	session := &fakeSession{
		mode: fetch.ModeStatic,
		listings: map[string][]models.Candidate{
			adapter.PageURL(1): {
				{Title: "Korupsi Sponsor", Link: "/advertorial/korupsi"},
				{Title: "Korupsi Asli", Link: "//news.example.com/berita/9#komentar", RawDate: "2 Februari 2024"},
				{Title: "Korupsi Tanpa Link", Link: "javascript:void(0)"},
			},
		},
		articles: map[string]string{
			"https://news.example.com/berita/9": articleHTML,
		},
	}

	result := NewOrchestrator(adapter, opener(session), newMemArticles(), testKeywords(), WithSleeper(noSleep)).
		Run(context.Background(), Request{MaxPages: 1})

	assert.Equal(t, 1, result.TotalScraped)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "https://news.example.com/berita/9", result.Items[0].Link)
	assert.Equal(t, time.February, result.Items[0].PublishedDate.Month())
}

func TestRunRecordsArticleFailuresAndContinues(t *testing.T) {
	adapter := testAdapter()
	session := &fakeSession{
		mode: fetch.ModeStatic,
		listings: map[string][]models.Candidate{
			adapter.PageURL(1): tenCandidates(),
		},
		articles: map[string]string{
			"https://news.example.com/berita/3": articleHTML,
			"https://news.example.com/berita/5": articleHTML,
		},
		openErrs: map[string]error{
			"https://news.example.com/berita/1": errors.New("connection reset"),
		},
	}
	articles := newMemArticles()
	articles.saveErr["https://news.example.com/berita/3"] = ErrDuplicateArticle

	result := NewOrchestrator(adapter, opener(session), articles, testKeywords(), WithSleeper(noSleep)).
		Run(context.Background(), Request{MaxPages: 1})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.NewItems)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "berita/1")
}

func TestRunAbortsOnFirstPageFailure(t *testing.T) {
	adapter := testAdapter()
	session := &fakeSession{
		mode:     fetch.ModeStatic,
		openErrs: map[string]error{adapter.PageURL(1): &fetch.StatusError{URL: adapter.PageURL(1), Code: 403}},
	}

	result := NewOrchestrator(adapter, opener(session), newMemArticles(), testKeywords(), WithSleeper(noSleep)).
		Run(context.Background(), Request{MaxPages: 5})

	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, []string{adapter.PageURL(1)}, session.opened)
	assert.True(t, session.closed)
}

func TestRunSkipsSingleFailedPage(t *testing.T) {
	adapter := testAdapter()
	session := &fakeSession{
		mode: fetch.ModeStatic,
		listings: map[string][]models.Candidate{
			adapter.PageURL(1): {{Title: "Korupsi Satu", Link: "/berita/1"}},
			adapter.PageURL(3): {{Title: "Korupsi Tiga", Link: "/berita/3"}},
		},
		articles: map[string]string{
			"https://news.example.com/berita/1": articleHTML,
			"https://news.example.com/berita/3": articleHTML,
		},
		openErrs: map[string]error{adapter.PageURL(2): fetch.ErrTransient},
	}

	result := NewOrchestrator(adapter, opener(session), newMemArticles(), testKeywords(), WithSleeper(noSleep)).
		Run(context.Background(), Request{MaxPages: 4})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.NewItems)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, session.opened, adapter.PageURL(4))
}

func TestRunClickPagination(t *testing.T) {
	adapter := testAdapter()
	adapter.Mode = fetch.ModeBrowser
	adapter.Pagination = PaginationClickButton
	adapter.NextSelector = ".more"

	session := &fakeSession{
		mode: fetch.ModeBrowser,
		clickPages: [][]models.Candidate{
			{{Title: "Korupsi A", Link: "/berita/a"}, {Title: "Cuaca", Link: "/berita/b"}},
			{{Title: "Banjir C", Link: "/berita/c"}},
			{{Title: "Korupsi D", Link: "/berita/d"}},
		},
		articles: map[string]string{
			"https://news.example.com/berita/a": articleHTML,
			"https://news.example.com/berita/c": articleHTML,
			"https://news.example.com/berita/d": articleHTML,
		},
	}

	result := NewOrchestrator(adapter, opener(session), newMemArticles(), testKeywords(), WithSleeper(noSleep)).
		Run(context.Background(), Request{MaxInteractions: 1})

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalScraped)
	assert.Equal(t, 2, result.NewItems)
	assert.NotContains(t, session.opened, "https://news.example.com/berita/d")
}

func TestRunHonoursCancelCheck(t *testing.T) {
	adapter := testAdapter()
	session := &fakeSession{
		mode: fetch.ModeStatic,
		listings: map[string][]models.Candidate{
			adapter.PageURL(1): {{Title: "Korupsi Satu", Link: "/berita/1"}},
			adapter.PageURL(2): {{Title: "Korupsi Dua", Link: "/berita/2"}},
		},
		articles: map[string]string{
			"https://news.example.com/berita/1": articleHTML,
			"https://news.example.com/berita/2": articleHTML,
		},
	}

	result := NewOrchestrator(adapter, opener(session), newMemArticles(), testKeywords(),
		WithSleeper(noSleep), WithCancelCheck(func(context.Context) bool { return true })).
		Run(context.Background(), Request{MaxPages: 5})

	assert.Equal(t, 1, result.NewItems)
	assert.NotContains(t, session.opened, adapter.PageURL(2))
}

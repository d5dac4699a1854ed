package crawler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

// Pagination is how the orchestrator advances through a portal's listing.
type Pagination string

const (
	// PaginationPageParam loads ListingURL once per page with an incrementing page number.
	PaginationPageParam Pagination = "page-query-param"
	// PaginationClickButton keeps one listing open and clicks a "load more" button.
	PaginationClickButton Pagination = "click-button"
	// PaginationClickLink keeps one listing open and clicks the next-page link.
	PaginationClickLink Pagination = "click-pagination-link"
)

// PagePlaceholder in ListingURL is replaced with the page number instead of
// setting a query parameter.
const PagePlaceholder = "{page}"

// DateSource reads a publication date from an article page. An empty Attr
// means the element text.
type DateSource struct {
	Selector string
	Attr     string
}

// PortalAdapter describes one news portal. Adding a portal means adding a
// value of this type, not new control flow.
type PortalAdapter struct {
	Name       string
	BaseURL    string
	ListingURL string
	Mode       fetch.Mode
	Pagination Pagination

	// PageParam and FirstPage apply to PaginationPageParam.
	PageParam string
	FirstPage int

	Listing         fetch.SelectorSet
	FallbackListing []fetch.SelectorSet

	// NextSelector is clicked by the click strategies; WaitSelector must be
	// present again after each click.
	NextSelector string
	WaitSelector string

	ContentSelectors []string
	NoiseSelectors   []string
	NoisePhrases     []string

	// PromoMarkers exclude candidates whose title or link contains any of them.
	PromoMarkers []string

	ArticleDateSelectors []DateSource
}

// Validate rejects adapters that cannot run.
func (a PortalAdapter) Validate() error {
	switch {
	case a.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidAdapter)
	case a.BaseURL == "":
		return fmt.Errorf("%w: %s: missing base url", ErrInvalidAdapter, a.Name)
	case a.ListingURL == "":
		return fmt.Errorf("%w: %s: missing listing url", ErrInvalidAdapter, a.Name)
	case a.Listing.Item == "":
		return fmt.Errorf("%w: %s: missing listing item selector", ErrInvalidAdapter, a.Name)
	}

	if _, err := url.Parse(a.BaseURL); err != nil {
		return fmt.Errorf("%w: %s: bad base url: %v", ErrInvalidAdapter, a.Name, err)
	}

	switch a.Mode {
	case fetch.ModeStatic, fetch.ModeBrowser:
	default:
		return fmt.Errorf("%w: %s: unknown mode %q", ErrInvalidAdapter, a.Name, a.Mode)
	}

	switch a.Pagination {
	case PaginationPageParam:
		if a.PageParam == "" && !strings.Contains(a.ListingURL, PagePlaceholder) {
			return fmt.Errorf("%w: %s: page pagination needs a page param or %s placeholder", ErrInvalidAdapter, a.Name, PagePlaceholder)
		}
	case PaginationClickButton, PaginationClickLink:
		if a.Mode != fetch.ModeBrowser {
			return fmt.Errorf("%w: %s: %s requires browser mode", ErrInvalidAdapter, a.Name, a.Pagination)
		}
		if a.NextSelector == "" {
			return fmt.Errorf("%w: %s: %s requires a next selector", ErrInvalidAdapter, a.Name, a.Pagination)
		}
	default:
		return fmt.Errorf("%w: %s: unknown pagination %q", ErrInvalidAdapter, a.Name, a.Pagination)
	}
	return nil
}

// PageURL returns the listing URL for page n.
func (a PortalAdapter) PageURL(n int) string {
	if strings.Contains(a.ListingURL, PagePlaceholder) {
		return strings.ReplaceAll(a.ListingURL, PagePlaceholder, strconv.Itoa(n))
	}
	u, err := url.Parse(a.ListingURL)
	if err != nil || a.PageParam == "" {
		return a.ListingURL
	}
	q := u.Query()
	q.Set(a.PageParam, strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}

// StartPage returns the first page number, defaulting to 1.
func (a PortalAdapter) StartPage() int {
	if a.FirstPage <= 0 {
		return 1
	}
	return a.FirstPage
}

// ResolveURL makes href absolute against BaseURL and drops the fragment.
// Non-navigable links resolve to "".
func (a PortalAdapter) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") {
		return ""
	}

	base, err := url.Parse(a.BaseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// IsPromotional reports whether the candidate belongs to a sponsored,
// popular or trending block rather than the latest feed.
func (a PortalAdapter) IsPromotional(c models.Candidate) bool {
	title := strings.ToLower(c.Title)
	link := strings.ToLower(c.Link)
	return lo.SomeBy(a.PromoMarkers, func(marker string) bool {
		m := strings.ToLower(marker)
		return m != "" && (strings.Contains(link, m) || strings.Contains(title, m))
	})
}

// ListingSelectors returns the primary selector set followed by the fallbacks.
func (a PortalAdapter) ListingSelectors() []fetch.SelectorSet {
	return append([]fetch.SelectorSet{a.Listing}, a.FallbackListing...)
}

// Host returns the BaseURL host without a leading "www.".
func (a PortalAdapter) Host() string {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// ArticleDate reads the first non-empty date from the article page.
func (a PortalAdapter) ArticleDate(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	for _, src := range a.ArticleDateSelectors {
		sel := doc.Find(src.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		var raw string
		if src.Attr != "" {
			raw = sel.AttrOr(src.Attr, "")
		} else {
			raw = sel.Text()
		}
		if raw = strings.TrimSpace(raw); raw != "" {
			return raw
		}
	}
	return ""
}

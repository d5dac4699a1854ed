// Package fetch loads listing and article pages, either as static HTML over
// HTTP or through a headless browser for portals that render with JavaScript.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/PuerkitoBio/goquery"
)

// Mode selects the fetch backend.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeBrowser Mode = "browser"
)

// AcceptLanguage is sent with every request so portals serve the Indonesian edition.
const AcceptLanguage = "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7"

var (
	ErrInteractionUnsupported = errors.New("interaction not supported in static mode")
	ErrSelectorNotFound       = errors.New("selector not found")
	ErrTransient              = errors.New("transient fetch failure")
	ErrUnknownMode            = errors.New("unknown fetch mode")
)

// StatusError is returned when a page answers with a non-success HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s) for %s", e.Code, http.StatusText(e.Code), e.URL)
}

// IsBlocked reports whether err means the portal refused to serve us.
func IsBlocked(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusForbidden || se.Code == http.StatusTooManyRequests
	}
	return false
}

// SelectorSet locates candidates on a listing page. Title, Link and Date are
// resolved relative to each Item; an empty selector means the item itself.
// Date is optional and skipped when empty.
type SelectorSet struct {
	Item      string `json:"item"`
	Title     string `json:"title"`
	TitleAttr string `json:"titleAttr"`
	Link      string `json:"link"`
	Date      string `json:"date"`
	DateAttr  string `json:"dateAttr"`
}

// Page is an opened document. Callers must Close it.
type Page interface {
	URL() string
	Extract(ctx context.Context, set SelectorSet) ([]models.Candidate, error)
	Document(ctx context.Context) (*goquery.Document, error)
	Click(ctx context.Context, selector string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	WaitIdle(ctx context.Context, timeout time.Duration) error
	Close() error
}

// Session opens pages with one backend. A session belongs to a single run.
type Session interface {
	Open(ctx context.Context, url string) (Page, error)
	Mode() Mode
	Close() error
}

// NewSession builds the backend for mode.
func NewSession(ctx context.Context, mode Mode, cfg Config) (Session, error) {
	switch mode {
	case ModeStatic, "":
		return NewStaticSession(cfg), nil
	case ModeBrowser:
		return NewBrowserSession(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

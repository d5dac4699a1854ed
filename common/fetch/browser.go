package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"
)

// blockedResources are never loaded by browser pages.
var blockedResources = []proto.NetworkResourceType{
	proto.NetworkResourceTypeImage,
	proto.NetworkResourceTypeStylesheet,
	proto.NetworkResourceTypeFont,
	proto.NetworkResourceTypeMedia,
}

// candidatesJS mirrors ExtractCandidates inside the page.
const candidatesJS = `(set) => {
	const clean = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const pick = (root, sel) => (sel ? root.querySelector(sel) : root);
	const read = (el, attr) => (!el ? '' : clean(attr ? el.getAttribute(attr) : el.textContent));
	const out = [];
	document.querySelectorAll(set.item).forEach((item) => {
		const title = read(pick(item, set.title), set.titleAttr);
		let linkEl = pick(item, set.link);
		if (linkEl && !linkEl.getAttribute('href')) {
			linkEl = linkEl.closest('a') || linkEl.querySelector('a');
		}
		const link = linkEl ? clean(linkEl.getAttribute('href')) : '';
		const rawDate = set.date ? read(item.querySelector(set.date), set.dateAttr) : '';
		if (title && link) {
			out.push({ title: title, link: link, raw_date: rawDate });
		}
	});
	return JSON.stringify(out);
}`

const navigationStatusJS = `() => {
	const nav = performance.getEntriesByType('navigation')[0];
	return nav && nav.responseStatus ? nav.responseStatus : 0;
}`

// BrowserSession drives a headless Chromium. One browser process is launched
// per session and torn down by Close.
type BrowserSession struct {
	cfg      Config
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewBrowserSession(ctx context.Context, cfg Config) (*BrowserSession, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("blink-settings", "imagesEnabled=false")
	if cfg.BrowserBinPath != "" {
		l = l.Bin(cfg.BrowserBinPath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	log.Info().Bool("headless", cfg.Headless).Bool("stealth", cfg.Stealth).Msg("Browser session ready")

	return &BrowserSession{cfg: cfg, launcher: l, browser: browser}, nil
}

func (s *BrowserSession) Mode() Mode { return ModeBrowser }

// Close shuts the browser down and kills the launcher process.
func (s *BrowserSession) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	log.Info().Msg("Browser session closed")
	return err
}

// Open navigates a new tab to pageURL with retries.
func (s *BrowserSession) Open(ctx context.Context, pageURL string) (Page, error) {
	var page *browserPage
	err := s.cfg.Retry.Do(ctx, "navigate "+pageURL, func(attempt int) error {
		p, err := s.navigate(ctx, pageURL, s.cfg.userAgent(attempt))
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *BrowserSession) newTab() (*rod.Page, error) {
	if s.cfg.Stealth {
		return stealth.Page(s.browser)
	}
	return s.browser.Page(proto.TargetCreateTarget{})
}

func (s *BrowserSession) navigate(ctx context.Context, pageURL, userAgent string) (*browserPage, error) {
	tab, err := s.newTab()
	if err != nil {
		return nil, fmt.Errorf("%w: create page: %v", ErrTransient, err)
	}

	p := &browserPage{url: pageURL, page: tab}
	if err := p.prepare(userAgent); err != nil {
		_ = p.Close()
		return nil, err
	}

	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().NavigationTimeout
	}

	nav := tab.Context(ctx).Timeout(timeout)
	if err := nav.Navigate(pageURL); err != nil {
		_ = p.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: navigate %s: %v", ErrTransient, pageURL, err)
	}
	if err := nav.WaitLoad(); err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("url", pageURL).Msg("Page load wait timed out, continuing")
	}

	if res, err := tab.Context(ctx).Eval(navigationStatusJS); err == nil {
		if code := res.Value.Int(); code >= 400 {
			_ = p.Close()
			return nil, &StatusError{URL: pageURL, Code: code}
		}
	}

	return p, nil
}

type browserPage struct {
	url    string
	page   *rod.Page
	router *rod.HijackRouter
}

// prepare sets the user agent and blocks heavy resources.
func (p *browserPage) prepare(userAgent string) error {
	if err := p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      userAgent,
		AcceptLanguage: AcceptLanguage,
	}); err != nil {
		return fmt.Errorf("%w: set user agent: %v", ErrTransient, err)
	}

	router := p.page.HijackRequests()
	for _, resource := range blockedResources {
		if err := router.Add("*", resource, func(h *rod.Hijack) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		}); err != nil {
			return fmt.Errorf("%w: hijack %s: %v", ErrTransient, resource, err)
		}
	}
	go router.Run()
	p.router = router
	return nil
}

func (p *browserPage) URL() string { return p.url }

func (p *browserPage) Extract(ctx context.Context, set SelectorSet) ([]models.Candidate, error) {
	res, err := p.page.Context(ctx).Eval(candidatesJS, set)
	if err != nil {
		return nil, fmt.Errorf("evaluate listing selectors: %w", err)
	}

	var out []models.Candidate
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return nil, fmt.Errorf("decode listing candidates: %w", err)
	}
	return out, nil
}

func (p *browserPage) Document(ctx context.Context) (*goquery.Document, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *browserPage) Click(ctx context.Context, selector string) error {
	found, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return fmt.Errorf("query %s: %w", selector, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
	}
	if err := el.ScrollIntoView(); err != nil {
		log.Debug().Err(err).Str("selector", selector).Msg("Scroll into view failed")
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (p *browserPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if _, err := p.page.Context(ctx).Timeout(timeout).Element(selector); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
		}
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (p *browserPage) WaitIdle(ctx context.Context, timeout time.Duration) error {
	wait := p.page.Context(ctx).Timeout(timeout).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	wait()
	return ctx.Err()
}

func (p *browserPage) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
	}
	return p.page.Close()
}

package fetch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RenderConfig controls the headless-browser fetcher.
type RenderConfig struct {
	UserAgent      string
	Timeout        time.Duration
	MaxTabs        int
	RatePerSecond  float64
	Headless       bool
	ExecPath       string
	WaitAfterReady time.Duration
}

// ChromedpFetcher renders pages in a headless browser so that
// script-populated markup is present in the body handed to the
// extractors. Tabs are capped by a semaphore and navigations by a
// token-bucket limiter, both shared across the run.
type ChromedpFetcher struct {
	baseURL      string
	cfg          RenderConfig
	tabs         *semaphore.Weighted
	limiter      *rate.Limiter
	browserCtx   context.Context
	cancelAlloc  context.CancelFunc
	cancelBrowse context.CancelFunc
	logger       *zap.Logger
}

// NewChromedpFetcher starts a browser process and returns a fetcher bound
// to it. Close must be called to reap the process.
func NewChromedpFetcher(ctx context.Context, baseURL string, cfg RenderConfig, logger *zap.Logger) (*ChromedpFetcher, error) {
	if baseURL == "" {
		return nil, errors.New("fetch: base URL is required")
	}
	if cfg.MaxTabs <= 0 {
		cfg.MaxTabs = 2
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}

	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowse := chromedp.NewContext(allocCtx)

	// Force the browser to actually launch so a broken environment fails
	// at construction rather than on the first vessel.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowse()
		cancelAlloc()
		return nil, err
	}

	return &ChromedpFetcher{
		baseURL:      baseURL,
		cfg:          cfg,
		tabs:         semaphore.NewWeighted(int64(cfg.MaxTabs)),
		limiter:      rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		browserCtx:   browserCtx,
		cancelAlloc:  cancelAlloc,
		cancelBrowse: cancelBrowse,
		logger:       logger,
	}, nil
}

// Fetch renders the detail page for imo in a fresh tab.
func (f *ChromedpFetcher) Fetch(ctx context.Context, imo int) (Page, error) {
	if err := f.tabs.Acquire(ctx, 1); err != nil {
		return Page{}, err
	}
	defer f.tabs.Release(1)

	if err := f.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}

	rawURL := VesselURL(f.baseURL, imo)
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.cfg.Timeout)
	defer cancelTimeout()

	// Watch dependent requests so the document response status is known
	// even though chromedp itself never surfaces it.
	statusCh := make(chan int, 1)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		if !strings.HasPrefix(resp.Response.URL, f.baseURL) {
			return
		}
		select {
		case statusCh <- int(resp.Response.Status):
		default:
		}
	})

	started := time.Now()
	var html string
	actions := []chromedp.Action{
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if f.cfg.WaitAfterReady > 0 {
		actions = append(actions, chromedp.Sleep(f.cfg.WaitAfterReady))
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		// Propagate the caller's deadline, not the tab's.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Page{}, ctxErr
		}
		return Page{}, err
	}

	// A successful navigation with no observed document event still means
	// the page loaded; assume OK rather than letting a zero status read as
	// a missing vessel downstream.
	status := 200
	select {
	case status = <-statusCh:
	default:
		f.logger.Debug("document status not observed", zap.Int("imo", imo))
	}

	return Page{
		IMO:        imo,
		URL:        rawURL,
		StatusCode: status,
		Body:       []byte(html),
		Duration:   time.Since(started),
		Rendered:   true,
	}, nil
}

// Close tears down the browser process.
func (f *ChromedpFetcher) Close() {
	f.cancelBrowse()
	f.cancelAlloc()
}

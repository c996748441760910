package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/retry"
)

// HTTPConfig controls the plain-HTTP fetcher.
type HTTPConfig struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	Concurrency int
	Delay       time.Duration
}

// CollyFetcher implements Fetcher over a shared Colly collector. The base
// collector owns the transport connection pool for the run; each Fetch
// clones it so callback state stays per-request.
type CollyFetcher struct {
	baseCollector *colly.Collector
	baseURL       string
	policy        *retry.Policy
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured HTTP fetcher.
func NewCollyFetcher(cfg HTTPConfig, policy *retry.Policy, logger *zap.Logger) (*CollyFetcher, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("fetch: base URL is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		MaxConnsPerHost:       cfg.Concurrency * 2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	if err := base.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Concurrency,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, err
	}

	if policy == nil {
		policy = retry.DefaultPolicy()
	}
	return &CollyFetcher{
		baseCollector: base,
		baseURL:       cfg.BaseURL,
		policy:        policy,
		logger:        logger,
	}, nil
}

// Fetch retrieves the detail page for imo, retrying transient transport
// failures. A non-2xx response is a valid Page, not an error; the existence
// classifier owns that judgement.
func (f *CollyFetcher) Fetch(ctx context.Context, imo int) (Page, error) {
	var page Page
	err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		p, err := f.fetchOnce(ctx, imo)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, imo int) (Page, error) {
	rawURL := VesselURL(f.baseURL, imo)
	collector := f.baseCollector.Clone()

	resultCh := make(chan collyResult, 1)
	var once sync.Once
	send := func(res collyResult) {
		once.Do(func() { resultCh <- res })
	}
	started := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		send(collyResult{page: Page{
			IMO:        imo,
			URL:        rawURL,
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(started),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		// Colly reports HTTP error statuses here; those are still pages.
		if r != nil && r.StatusCode > 0 {
			send(collyResult{page: Page{
				IMO:        imo,
				URL:        rawURL,
				StatusCode: r.StatusCode,
				Body:       append([]byte(nil), r.Body...),
				Duration:   time.Since(started),
			}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(collyResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return Page{}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		if res.err != nil {
			f.logger.Debug("http fetch failed",
				zap.Int("imo", imo),
				zap.Error(res.err),
			)
		}
		return res.page, res.err
	default:
		return Page{}, errors.New("colly fetch produced no result")
	}
}

type collyResult struct {
	page Page
	err  error
}

// Package fetch retrieves vessel detail pages and classifies the outcome.
//
// Two Fetcher implementations exist: a plain HTTP fetcher built on Colly and
// a rendered fetcher built on chromedp for pages that only materialize after
// JavaScript runs. A hybrid wrapper tries HTTP first and promotes to the
// rendered path when the probe looks like an empty shell.
package fetch

import (
	"context"
	"fmt"
	"time"
)

// Page is the raw result of one fetch attempt.
type Page struct {
	IMO        int
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
	Rendered   bool
}

// Fetcher retrieves the detail page for one identifier. Implementations own
// their transport-level retry policy; callers see only the final result.
type Fetcher interface {
	Fetch(ctx context.Context, imo int) (Page, error)
}

// VesselURL builds the detail page URL for an identifier.
func VesselURL(baseURL string, imo int) string {
	return fmt.Sprintf("%s/vessel/imo/%d", baseURL, imo)
}

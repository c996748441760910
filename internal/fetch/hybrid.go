package fetch

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// PromoteDetector decides whether a plain-HTTP page is good enough to hand
// to the extractors, or whether the vessel page needs a browser render. A
// page is kept when it clears the size floor and shows either a content
// keyword or a populated detail selector.
type PromoteDetector struct {
	MinBodyBytes int
	Keywords     []string
	Selectors    []string
}

// DefaultPromoteDetector matches the registry's server-rendered detail
// pages; script-shell responses fail all three checks.
func DefaultPromoteDetector() PromoteDetector {
	return PromoteDetector{
		MinBodyBytes: 4096,
		Keywords:     []string{"gross tonnage", "call sign", "year of build"},
		Selectors:    []string{"table tr td", "dl dd", "div.vessel-info"},
	}
}

// Complete reports whether body already carries the vessel detail content.
func (d PromoteDetector) Complete(body []byte) bool {
	if len(body) < d.MinBodyBytes {
		return false
	}
	lower := bytes.ToLower(body)
	for _, kw := range d.Keywords {
		if bytes.Contains(lower, []byte(kw)) {
			return true
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}
	for _, sel := range d.Selectors {
		found := false
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.TrimSpace(s.Text()) != "" {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// HybridFetcher probes with the cheap HTTP fetcher first and promotes to a
// browser render only when the probe body looks like an empty script shell.
// Definitive not-found responses are never promoted.
type HybridFetcher struct {
	probe    Fetcher
	rendered Fetcher
	detector PromoteDetector
	rules    ClassifyRules
	logger   *zap.Logger
}

// NewHybridFetcher wires the two-stage fetcher.
func NewHybridFetcher(probe, rendered Fetcher, detector PromoteDetector, rules ClassifyRules, logger *zap.Logger) *HybridFetcher {
	return &HybridFetcher{
		probe:    probe,
		rendered: rendered,
		detector: detector,
		rules:    rules,
		logger:   logger,
	}
}

// Fetch implements Fetcher.
func (f *HybridFetcher) Fetch(ctx context.Context, imo int) (Page, error) {
	page, err := f.probe.Fetch(ctx, imo)
	if err != nil {
		return Page{}, err
	}
	if f.rules.Classify(page) != OutcomeExists {
		return page, nil
	}
	if f.detector.Complete(page.Body) {
		return page, nil
	}
	f.logger.Debug("promoting to rendered fetch",
		zap.Int("imo", imo),
		zap.Int("probe_bytes", len(page.Body)),
	)
	renderedPage, err := f.rendered.Fetch(ctx, imo)
	if err != nil {
		// The probe succeeded; better a shell page than nothing.
		f.logger.Warn("rendered fetch failed, keeping probe page",
			zap.Int("imo", imo),
			zap.Error(err),
		)
		return page, nil
	}
	return renderedPage, nil
}

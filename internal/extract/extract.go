// Package extract turns a fetched vessel page into a canonical record.
//
// Three passes run in decreasing order of trust: structured markup, a
// generative model over the detail table, and fixed-pattern heuristics.
// Their proposals are fused by the vessel merge rule, so an early pass's
// value survives unless a later pass produces strictly more complete text.
package extract

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// Extractor orchestrates the three passes over one page.
type Extractor struct {
	gen    *GenerativePass // nil disables the generative pass
	merger *vessel.Merger
	logger *zap.Logger
}

// New builds an Extractor. Passing a nil GenerativePass yields a purely
// mechanical extractor, useful offline and in tests.
func New(gen *GenerativePass, merger *vessel.Merger, logger *zap.Logger) *Extractor {
	if merger == nil {
		merger = vessel.NewMerger(nil)
	}
	return &Extractor{gen: gen, merger: merger, logger: logger}
}

// Extract runs all passes over body and returns the merged record, or nil
// when no pass produced a substantive value. Pass failures are soft: a
// broken generative backend degrades extraction, it does not abort it.
func (e *Extractor) Extract(ctx context.Context, imo int, sourceURL string, body []byte) *vessel.Record {
	record := vessel.NewRecord(imo)
	record.SourceURL = sourceURL
	record.ExtractedAt = time.Now().UTC()

	structured, err := StructuredPass(body)
	if err != nil {
		e.logger.Warn("structured pass failed", zap.Int("imo", imo), zap.Error(err))
	} else {
		e.apply(record, structured)
	}

	if e.gen != nil {
		generative, err := e.gen.Extract(ctx, imo, body)
		if err != nil {
			e.logger.Warn("generative pass failed", zap.Int("imo", imo), zap.Error(err))
		} else {
			e.apply(record, generative)
		}
	}

	heuristic, err := HeuristicPass(body)
	if err != nil {
		e.logger.Warn("heuristic pass failed", zap.Int("imo", imo), zap.Error(err))
	} else {
		e.apply(record, heuristic)
	}

	if !record.Substantive() {
		return nil
	}
	e.logger.Debug("extracted record",
		zap.Int("imo", imo),
		zap.Int("fields", record.FieldCount()),
	)
	return record
}

func (e *Extractor) apply(r *vessel.Record, p Proposal) {
	for field, value := range p.Fields {
		e.merger.Apply(r, field, value)
	}
	for label, value := range p.Other {
		e.merger.ApplyOther(r, label, value)
	}
}

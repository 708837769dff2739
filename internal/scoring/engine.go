// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scoring computes weighted criterion totals, classifies them into
// RAG bands and manages per-(application, scorer) score records.
package scoring

import (
	"context"
	"math"
	"time"

	"github.com/olegiv/pbfund-go/internal/model"
	"github.com/olegiv/pbfund-go/internal/store"
)

// DefaultThreshold is the Green cutoff used when no threshold is configured.
const DefaultThreshold = 65.0

// amberFraction scales the threshold down to the Amber cutoff.
const amberFraction = 0.6

// Band is the RAG classification of a weighted total.
type Band string

// RAG bands.
const (
	BandGreen Band = "Green"
	BandAmber Band = "Amber"
	BandRed   Band = "Red"
)

// Engine scores applications against the criterion catalog.
type Engine struct {
	store     *store.Store
	threshold float64
}

// NewEngine creates an Engine with the given Green threshold. A zero or
// negative threshold falls back to the default.
func NewEngine(st *store.Store, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{store: st, threshold: threshold}
}

// Threshold returns the configured Green cutoff.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// ComputeTotal derives the weighted total from raw sub-scores: each
// criterion contributes (raw / max-sub-score) x weight. Criterion ids absent
// from the catalog are ignored; criteria absent from raw contribute zero.
// With the full catalog the result ranges 0 to 100.
func ComputeTotal(raw map[string]int) float64 {
	var total float64
	for _, c := range model.Criteria() {
		sub, ok := raw[c.ID]
		if !ok {
			continue
		}
		total += float64(sub) / model.MaxSubScore * c.Weight
	}
	return total
}

// ClassifyBand maps a weighted total to its RAG band for a given threshold:
// Green at or above the threshold, Amber at or above 60% of it, Red below.
func ClassifyBand(total, threshold float64) Band {
	switch {
	case total >= threshold:
		return BandGreen
	case total >= amberFraction*threshold:
		return BandAmber
	default:
		return BandRed
	}
}

// Band classifies a total against the engine's configured threshold.
func (e *Engine) Band(total float64) Band {
	return ClassifyBand(total, e.threshold)
}

// Draft is the scorer-supplied part of a score record. Total and Timestamp
// are derived on save and never taken from the caller.
type Draft struct {
	AppID      string
	ScorerID   string
	ScorerName string
	Scores     map[string]int
	Notes      map[string]string
	IsFinal    bool
}

// Save persists a score record, recomputing the weighted total and stamping
// the save time. Records are keyed by (application, scorer): saving again
// for the same pair replaces the previous record.
func (e *Engine) Save(ctx context.Context, draft Draft) (model.Score, error) {
	rec := model.Score{
		AppID:      draft.AppID,
		ScorerID:   draft.ScorerID,
		ScorerName: draft.ScorerName,
		Scores:     draft.Scores,
		Notes:      draft.Notes,
		IsFinal:    draft.IsFinal,
		Total:      ComputeTotal(draft.Scores),
		Timestamp:  time.Now(),
	}

	err := e.store.UpdateScores(ctx, func(scores []model.Score) ([]model.Score, error) {
		for i := range scores {
			if scores[i].AppID == rec.AppID && scores[i].ScorerID == rec.ScorerID {
				scores[i] = rec
				return scores, nil
			}
		}
		return append(scores, rec), nil
	})
	if err != nil {
		return model.Score{}, err
	}
	return rec, nil
}

// Delete removes the score for one (application, scorer) pair. Unknown
// pairs are a no-op.
func (e *Engine) Delete(ctx context.Context, appID, scorerID string) error {
	return e.store.UpdateScores(ctx, func(scores []model.Score) ([]model.Score, error) {
		kept := scores[:0]
		for _, sc := range scores {
			if sc.AppID != appID || sc.ScorerID != scorerID {
				kept = append(kept, sc)
			}
		}
		return kept, nil
	})
}

// Scores returns all persisted score records.
func (e *Engine) Scores(ctx context.Context) ([]model.Score, error) {
	return e.store.Scores(ctx)
}

// ScoresFor returns the score records for one application.
func (e *Engine) ScoresFor(ctx context.Context, appID string) ([]model.Score, error) {
	scores, err := e.store.Scores(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Score
	for _, sc := range scores {
		if sc.AppID == appID {
			out = append(out, sc)
		}
	}
	return out, nil
}

// Aggregate summarizes the finalized scores for an application: the mean of
// their totals rounded to one decimal place, and how many there were.
// Draft (non-final) scores are excluded. No finalized scores yields (0, 0).
func (e *Engine) Aggregate(ctx context.Context, appID string) (float64, int, error) {
	scores, err := e.store.Scores(ctx)
	if err != nil {
		return 0, 0, err
	}

	var sum float64
	var count int
	for _, sc := range scores {
		if sc.AppID == appID && sc.IsFinal {
			sum += sc.Total
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}

	avg := math.Round(sum/float64(count)*10) / 10
	return avg, count, nil
}

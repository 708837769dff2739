// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Score holds one committee member's assessment of one application.
// The composite key is (AppID, ScorerID): the store never carries more than
// one record per pair.
//
// Total is derived from Scores by the scoring engine on every save. It is a
// cached value for reporting and must never be set independently; the engine
// is the only construction path for persisted scores.
type Score struct {
	AppID      string            `json:"appId"`
	ScorerID   string            `json:"scorerId"`
	ScorerName string            `json:"scorerName"`
	Scores     map[string]int    `json:"scores"` // criterion id -> raw sub-score (0-3)
	Notes      map[string]string `json:"notes"`  // criterion id -> justification
	IsFinal    bool              `json:"isFinal"`
	Total      float64           `json:"total"` // 0-100, engine-computed
	Timestamp  time.Time         `json:"timestamp"`
}

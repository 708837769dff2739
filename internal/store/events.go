// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/pbfund-go/internal/model"
)

// InsertEvent appends an audit log entry. The events table is append-only
// and lives outside the collection rows.
func (s *Store) InsertEvent(ctx context.Context, ev model.Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if ev.Metadata == "" {
		ev.Metadata = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, actor_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Level, ev.Category, ev.Message, ev.ActorID, ev.Metadata, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent audit entries, newest first.
func (s *Store) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level, category, message, actor_id, metadata, created_at
		FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Level, &ev.Category, &ev.Message,
			&ev.ActorID, &ev.Metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/olegiv/pbfund-go/internal/model"
)

// Collection names. Each collection is persisted as one ordered JSON array
// under its own key in the collections table.
const (
	CollectionUsers  = "users"
	CollectionApps   = "apps"
	CollectionScores = "scores"
)

// Store is the record store. All writes are full-collection replaces, so the
// store serializes them: one mutex per collection guards the whole
// read-modify-write cycle, and each cycle runs inside a single transaction.
// Reads issued after an update returns always observe it.
//
// Construct one Store at startup and pass it to the components that need it;
// there is no package-level instance.
type Store struct {
	db *sql.DB

	usersMu  sync.Mutex
	appsMu   sync.Mutex
	scoresMu sync.Mutex
}

// New creates a Store on top of an opened, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying database for ancillary tables (events).
func (s *Store) DB() *sql.DB {
	return s.db
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loadCollection reads a whole collection. An absent collection is not an
// error and reads as empty; malformed stored data propagates to the caller.
func loadCollection[T any](ctx context.Context, q rowQueryer, name string) ([]T, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading collection %q: %w", name, err)
	}

	var records []T
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("decoding collection %q: %w", name, err)
	}
	return records, nil
}

// saveCollection atomically replaces a whole collection.
func saveCollection[T any](ctx context.Context, e execer, name string, records []T) error {
	if records == nil {
		records = []T{} // persist an empty array, not null
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding collection %q: %w", name, err)
	}

	_, err = e.ExecContext(ctx, `
		INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("saving collection %q: %w", name, err)
	}
	return nil
}

// collectionExists reports whether a collection key has ever been written.
// Seeding distinguishes "absent" from "present but empty".
func (s *Store) collectionExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM collections WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking collection %q: %w", name, err)
	}
	return true, nil
}

// updateCollection runs one serialized read-modify-write cycle. The caller
// must hold the collection's mutex.
func updateCollection[T any](ctx context.Context, s *Store, name string, fn func([]T) ([]T, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning %q update: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	records, err := loadCollection[T](ctx, tx, name)
	if err != nil {
		return err
	}

	updated, err := fn(records)
	if err != nil {
		return err
	}

	if err := saveCollection(ctx, tx, name, updated); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %q update: %w", name, err)
	}
	return nil
}

// Users returns all user records.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	return loadCollection[model.User](ctx, s.db, CollectionUsers)
}

// Applications returns all application records.
func (s *Store) Applications(ctx context.Context) ([]model.Application, error) {
	return loadCollection[model.Application](ctx, s.db, CollectionApps)
}

// Scores returns all score records.
func (s *Store) Scores(ctx context.Context) ([]model.Score, error) {
	return loadCollection[model.Score](ctx, s.db, CollectionScores)
}

// UpdateUsers replaces the user collection with the result of fn, which
// receives the current records. Serialized against other user writes.
func (s *Store) UpdateUsers(ctx context.Context, fn func([]model.User) ([]model.User, error)) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return updateCollection(ctx, s, CollectionUsers, fn)
}

// UpdateApplications replaces the application collection with the result of fn.
func (s *Store) UpdateApplications(ctx context.Context, fn func([]model.Application) ([]model.Application, error)) error {
	s.appsMu.Lock()
	defer s.appsMu.Unlock()
	return updateCollection(ctx, s, CollectionApps, fn)
}

// UpdateScores replaces the score collection with the result of fn.
func (s *Store) UpdateScores(ctx context.Context, fn func([]model.Score) ([]model.Score, error)) error {
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()
	return updateCollection(ctx, s, CollectionScores, fn)
}

// UpdateApplicationsAndScores rewrites both collections in one transaction.
// This is the cascade path: deleting an application and its scores either
// lands together or not at all. Locks are taken in a fixed order (apps
// before scores) so the combined update cannot deadlock with UpdateScores.
func (s *Store) UpdateApplicationsAndScores(ctx context.Context,
	fn func([]model.Application, []model.Score) ([]model.Application, []model.Score, error)) error {

	s.appsMu.Lock()
	defer s.appsMu.Unlock()
	s.scoresMu.Lock()
	defer s.scoresMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cascade update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	apps, err := loadCollection[model.Application](ctx, tx, CollectionApps)
	if err != nil {
		return err
	}
	scores, err := loadCollection[model.Score](ctx, tx, CollectionScores)
	if err != nil {
		return err
	}

	apps, scores, err = fn(apps, scores)
	if err != nil {
		return err
	}

	if err := saveCollection(ctx, tx, CollectionApps, apps); err != nil {
		return err
	}
	if err := saveCollection(ctx, tx, CollectionScores, scores); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cascade update: %w", err)
	}
	return nil
}

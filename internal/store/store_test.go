package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/olegiv/pbfund-go/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "pbfund-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

func testStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, cleanup := testDB(t)
	return New(db), cleanup
}

func TestAbsentCollectionsReadEmpty(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}

	apps, err := s.Applications(ctx)
	if err != nil {
		t.Fatalf("Applications: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("expected no applications, got %d", len(apps))
	}

	scores, err := s.Scores(ctx)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("expected no scores, got %d", len(scores))
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	err := s.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		return append(users, model.User{UID: "u1", Email: "u1@example.com", Role: model.RoleApplicant}), nil
	})
	if err != nil {
		t.Fatalf("UpdateUsers: %v", err)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || users[0].UID != "u1" {
		t.Fatalf("unexpected users after update: %+v", users)
	}

	// A second update sees the first one's result.
	err = s.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		if len(users) != 1 {
			t.Errorf("update fn saw %d users, want 1", len(users))
		}
		return append(users, model.User{UID: "u2", Email: "u2@example.com", Role: model.RoleApplicant}), nil
	})
	if err != nil {
		t.Fatalf("UpdateUsers: %v", err)
	}

	users, err = s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestUpdateFnErrorRollsBack(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := s.UpdateApplications(ctx, func(apps []model.Application) ([]model.Application, error) {
		return append(apps, model.Application{ID: "a1"}), sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	apps, err := s.Applications(ctx)
	if err != nil {
		t.Fatalf("Applications: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("failed update must not persist, got %d applications", len(apps))
	}
}

func TestCascadeUpdateIsAtomic(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	err := s.UpdateApplications(ctx, func([]model.Application) ([]model.Application, error) {
		return []model.Application{{ID: "a1", Status: model.StatusSubmittedStage1}}, nil
	})
	if err != nil {
		t.Fatalf("UpdateApplications: %v", err)
	}
	err = s.UpdateScores(ctx, func([]model.Score) ([]model.Score, error) {
		return []model.Score{{AppID: "a1", ScorerID: "s1"}}, nil
	})
	if err != nil {
		t.Fatalf("UpdateScores: %v", err)
	}

	// Failing cascade leaves both collections untouched.
	sentinel := errors.New("boom")
	err = s.UpdateApplicationsAndScores(ctx,
		func(apps []model.Application, scores []model.Score) ([]model.Application, []model.Score, error) {
			return nil, nil, sentinel
		})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	apps, _ := s.Applications(ctx)
	scores, _ := s.Scores(ctx)
	if len(apps) != 1 || len(scores) != 1 {
		t.Fatalf("failed cascade must not persist: apps=%d scores=%d", len(apps), len(scores))
	}

	// Successful cascade removes both together.
	err = s.UpdateApplicationsAndScores(ctx,
		func(apps []model.Application, scores []model.Score) ([]model.Application, []model.Score, error) {
			return nil, nil, nil
		})
	if err != nil {
		t.Fatalf("UpdateApplicationsAndScores: %v", err)
	}

	apps, _ = s.Applications(ctx)
	scores, _ = s.Scores(ctx)
	if len(apps) != 0 || len(scores) != 0 {
		t.Fatalf("cascade did not clear collections: apps=%d scores=%d", len(apps), len(scores))
	}
}

func TestCollectionExists(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	exists, err := s.collectionExists(ctx, CollectionScores)
	if err != nil {
		t.Fatalf("collectionExists: %v", err)
	}
	if exists {
		t.Error("collection should not exist before first write")
	}

	// An empty write still marks the collection as present.
	err = s.UpdateScores(ctx, func([]model.Score) ([]model.Score, error) {
		return []model.Score{}, nil
	})
	if err != nil {
		t.Fatalf("UpdateScores: %v", err)
	}

	exists, err = s.collectionExists(ctx, CollectionScores)
	if err != nil {
		t.Fatalf("collectionExists: %v", err)
	}
	if !exists {
		t.Error("collection should exist after an empty write")
	}
}

func TestMalformedCollectionFails(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)`,
		CollectionUsers, "{not json", time.Now())
	if err != nil {
		t.Fatalf("inserting malformed row: %v", err)
	}

	if _, err := s.Users(ctx); err == nil {
		t.Fatal("expected error reading malformed collection")
	}
}

func TestEventsInsertAndList(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	events := []model.Event{
		{Level: model.EventLevelWarning, Category: model.EventCategoryAuth, Message: "first"},
		{Level: model.EventLevelError, Category: model.EventCategorySystem, Message: "second", ActorID: "u1"},
	}
	for _, ev := range events {
		if err := s.InsertEvent(ctx, ev); err != nil {
			t.Fatalf("InsertEvent: %v", err)
		}
	}

	got, err := s.ListEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	// Newest first.
	if got[0].Message != "second" {
		t.Errorf("expected newest event first, got %q", got[0].Message)
	}
	if got[0].ActorID != "u1" {
		t.Errorf("actor id not round-tripped: %q", got[0].ActorID)
	}
	if got[1].Metadata != "{}" {
		t.Errorf("empty metadata should default to {}, got %q", got[1].Metadata)
	}
}

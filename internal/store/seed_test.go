package store

import (
	"context"
	"testing"

	"github.com/olegiv/pbfund-go/internal/auth"
	"github.com/olegiv/pbfund-go/internal/model"
)

func TestSeedPopulatesEmptyStore(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != len(demoUsers()) {
		t.Errorf("expected %d seeded users, got %d", len(demoUsers()), len(users))
	}

	apps, err := s.Applications(ctx)
	if err != nil {
		t.Fatalf("Applications: %v", err)
	}
	if len(apps) != len(demoApplications()) {
		t.Errorf("expected %d seeded applications, got %d", len(demoApplications()), len(apps))
	}

	// Scores collection is initialized present-but-empty.
	exists, err := s.collectionExists(ctx, CollectionScores)
	if err != nil {
		t.Fatalf("collectionExists: %v", err)
	}
	if !exists {
		t.Error("scores collection should exist after seeding")
	}
	scores, err := s.Scores(ctx)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("expected empty scores, got %d", len(scores))
	}
}

func TestSeedDemoCredentials(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}

	for _, u := range users {
		if u.PasswordHash == "" {
			t.Fatalf("seeded user %s has no credential hash", u.UID)
		}
		if u.PasswordHash == DemoPassword {
			t.Fatalf("seeded user %s stores the plaintext password", u.UID)
		}
	}

	ok, err := auth.CheckPassword(DemoPassword, users[0].PasswordHash)
	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if !ok {
		t.Error("demo password does not verify against the seeded hash")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := s.Seed(ctx); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	seen := make(map[string]int)
	for _, u := range users {
		seen[u.UID]++
	}
	for uid, n := range seen {
		if n > 1 {
			t.Errorf("uid %s seeded %d times", uid, n)
		}
	}
	if len(users) != len(demoUsers()) {
		t.Errorf("expected %d users after double seed, got %d", len(demoUsers()), len(users))
	}
}

func TestSeedMergePreservesExistingUsers(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	existing := model.User{UID: "local_01", Email: "keeper@example.com", Role: model.RoleApplicant}
	err := s.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		return append(users, existing), nil
	})
	if err != nil {
		t.Fatalf("UpdateUsers: %v", err)
	}

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != len(demoUsers())+1 {
		t.Fatalf("expected %d users, got %d", len(demoUsers())+1, len(users))
	}

	var found bool
	for _, u := range users {
		if u.UID == existing.UID && u.Email == existing.Email {
			found = true
		}
	}
	if !found {
		t.Error("pre-existing user lost during seed merge")
	}
}

func TestSeedDoesNotOverwriteApplications(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()
	ctx := context.Background()

	// A store whose apps collection was written (even empty) is not reseeded.
	err := s.UpdateApplications(ctx, func([]model.Application) ([]model.Application, error) {
		return []model.Application{}, nil
	})
	if err != nil {
		t.Fatalf("UpdateApplications: %v", err)
	}

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	apps, err := s.Applications(ctx)
	if err != nil {
		t.Fatalf("Applications: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("seed must not overwrite an existing apps collection, got %d", len(apps))
	}
}

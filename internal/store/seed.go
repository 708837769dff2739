// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/pbfund-go/internal/auth"
	"github.com/olegiv/pbfund-go/internal/model"
)

// DemoPassword is the shared credential for every seeded demo account.
const DemoPassword = "demo"

// Seed populates the store on first use. It is idempotent:
//   - the application collection is seeded with the demo dataset only if it
//     has never been written;
//   - the score collection is initialized empty if absent;
//   - demo users are merged into the user collection by uid, so re-running
//     never duplicates or overwrites an existing account.
func (s *Store) Seed(ctx context.Context) error {
	appsExist, err := s.collectionExists(ctx, CollectionApps)
	if err != nil {
		return err
	}
	if !appsExist {
		if err := s.UpdateApplications(ctx, func([]model.Application) ([]model.Application, error) {
			return demoApplications(), nil
		}); err != nil {
			return fmt.Errorf("seeding applications: %w", err)
		}
		slog.Info("seeded demo applications", "count", len(demoApplications()))
	}

	scoresExist, err := s.collectionExists(ctx, CollectionScores)
	if err != nil {
		return err
	}
	if !scoresExist {
		if err := s.UpdateScores(ctx, func([]model.Score) ([]model.Score, error) {
			return []model.Score{}, nil
		}); err != nil {
			return fmt.Errorf("initializing scores: %w", err)
		}
	}

	// Demo accounts share one credential, so hash it once up front.
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}

	var added int
	err = s.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		existing := make(map[string]bool, len(users))
		for _, u := range users {
			existing[u.UID] = true
		}
		for _, seed := range demoUsers() {
			if existing[seed.UID] {
				continue
			}
			seed.PasswordHash = hash
			users = append(users, seed)
			added++
		}
		return users, nil
	})
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	if added > 0 {
		slog.Info("seeded demo users", "count", added)
	} else {
		slog.Info("demo users already present, skipping seed")
	}

	return nil
}

func demoUsers() []model.User {
	committee := func(uid, username, name, area string) model.User {
		return model.User{
			UID:         uid,
			Email:       username + "@" + model.CommitteeDomain,
			Username:    username,
			Role:        model.RoleCommittee,
			Area:        area,
			DisplayName: name,
		}
	}

	return []model.User{
		{
			UID:         "admin_01",
			Email:       "admin@torfaen.gov.uk",
			Username:    "admin",
			Role:        model.RoleAdmin,
			DisplayName: "System Admin",
			Bio:         "Portal Administrator",
		},
		{
			UID:         "app_01",
			Email:       "applicant@gmail.com",
			Username:    "applicant",
			Role:        model.RoleApplicant,
			DisplayName: "Local Hero",
		},

		// Blaenavon committee
		committee("comm_bln_01", "louise.white", "Louise White", model.AreaBlaenavon),
		committee("comm_bln_02", "sharon.ford", "Sharon Ford", model.AreaBlaenavon),
		committee("comm_bln_03", "boyd.paynter", "Boyd Paynter", model.AreaBlaenavon),
		committee("comm_bln_04", "sarah.charles", "Sarah J Charles", model.AreaBlaenavon),
		committee("comm_bln_05", "karen.lang", "Karen Lang", model.AreaBlaenavon),
		committee("comm_bln_06", "richard.lang", "Richard Lang", model.AreaBlaenavon),
		committee("comm_bln_07", "pauline.griffiths", "Pauline Griffiths", model.AreaBlaenavon),

		// Thornhill & Upper Cwmbran committee
		committee("comm_thn_01", "tracey.daniels", "Tracey Daniels", model.AreaThornhill),
		committee("comm_thn_02", "adele.bishop", "Adele Bishop", model.AreaThornhill),
		committee("comm_thn_03", "clare.roche", "Clare Roche", model.AreaThornhill),
		committee("comm_thn_04", "lara.biggs", "Lara Biggs", model.AreaThornhill),
		committee("comm_thn_05", "steven.evans", "Steven Evans", model.AreaThornhill),
		committee("comm_thn_06", "leanne.lloyd", "Leanne Lloyd-Tolman", model.AreaThornhill),

		// Trevethin, Penygarn & St. Cadocs committee
		committee("comm_tre_01", "hannah.davies", "Hannah Davies", model.AreaTrevethin),
		committee("comm_tre_02", "louise.johnson", "Louise Johnson", model.AreaTrevethin),
		committee("comm_tre_03", "toniann.phillips", "Toniann Phillips", model.AreaTrevethin),
		committee("comm_tre_04", "sue.malson", "Sue Malson", model.AreaTrevethin),
		committee("comm_tre_05", "john.marks", "John Marks", model.AreaTrevethin),
		committee("comm_tre_06", "denise.strange", "Denise Strange", model.AreaTrevethin),
	}
}

func demoApplications() []model.Application {
	now := time.Now()

	return []model.Application{
		{
			ID:              "app_PBBLN001",
			UserID:          "app_02",
			ApplicantName:   "Blaenavon Blues FC",
			OrgName:         "Blaenavon Blues FC",
			ProjectTitle:    "Pitch Improvements",
			Area:            model.AreaBlaenavon,
			Summary:         "Improving the playing surface and drainage to allow for year-round youth football.",
			AmountRequested: 4500,
			TotalCost:       6000,
			Status:          model.StatusSubmittedStage2,
			Priority:        "Health & Wellbeing",
			CreatedAt:       now.Add(-167 * time.Hour),
			Ref:             "PBBLN001",
			Stage1DocRef:    "PBBLN001.pdf",
			Stage2DocRef:    "PBBLN001.pdf",
		},
		{
			ID:              "app_PBBLN003",
			UserID:          "app_03",
			ApplicantName:   "Blaenavon Community Museum",
			OrgName:         "Museum Trust",
			ProjectTitle:    "Interactive History Display",
			Area:            model.AreaBlaenavon,
			Summary:         "Creating a new digital interactive display for local mining history.",
			AmountRequested: 2800,
			TotalCost:       3500,
			Status:          model.StatusSubmittedStage1,
			Priority:        "Heritage & Tourism",
			CreatedAt:       now.Add(-150 * time.Hour),
			Ref:             "PBBLN003",
			Stage1DocRef:    "PBBLN003.pdf",
		},
		{
			ID:              "app_PBTUP001",
			UserID:          "app_04",
			ApplicantName:   "Able",
			OrgName:         "Able Community",
			ProjectTitle:    "Accessible Gardening",
			Area:            model.AreaThornhill,
			Summary:         "Raised beds and accessible pathways for the community garden.",
			AmountRequested: 2000,
			TotalCost:       2500,
			Status:          model.StatusInvitedStage2,
			Priority:        "Health & Wellbeing",
			CreatedAt:       now.Add(-83 * time.Hour),
			Ref:             "PBTUP001",
			Stage1DocRef:    "PBTUP001.pdf",
		},
		{
			ID:              "app_PBTPS002",
			UserID:          "app_05",
			ApplicantName:   "CBF - MUGA",
			OrgName:         "Community Benefit Fund",
			ProjectTitle:    "MUGA Floodlights",
			Area:            model.AreaTrevethin,
			Summary:         "Installing new LED floodlights for the Multi-Use Games Area.",
			AmountRequested: 8500,
			TotalCost:       12000,
			Status:          model.StatusSubmittedStage2,
			Priority:        "Community Safety",
			CreatedAt:       now.Add(-33 * time.Hour),
			Ref:             "PBTPS002",
			Stage1DocRef:    "PBTPS002.pdf",
			Stage2DocRef:    "PBTPS002.pdf",
		},
	}
}

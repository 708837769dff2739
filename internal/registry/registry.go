// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package registry manages application records: creation with reference
// assignment, area-filtered listing, merged updates and cascade deletion.
package registry

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/pbfund-go/internal/model"
	"github.com/olegiv/pbfund-go/internal/store"
)

// Registry provides application CRUD on top of the record store.
type Registry struct {
	store     *store.Store
	sanitizer *bluemonday.Policy
}

// New creates a Registry. Applicant-supplied text is stripped of any HTML
// before it is persisted.
func New(st *store.Store) *Registry {
	return &Registry{
		store:     st,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// List returns applications filtered by committee area. An empty filter or
// the "All" sentinel returns everything; otherwise an application matches
// when its area equals the filter or it is a Cross-Area application, which
// every committee sees.
func (r *Registry) List(ctx context.Context, area string) ([]model.Application, error) {
	apps, err := r.store.Applications(ctx)
	if err != nil {
		return nil, err
	}

	if area == "" || area == model.AreaFilterAll {
		return apps, nil
	}

	filtered := make([]model.Application, 0, len(apps))
	for _, app := range apps {
		if app.Area == area || app.Area == model.AreaCross {
			filtered = append(filtered, app)
		}
	}
	return filtered, nil
}

// Get returns a single application by id.
func (r *Registry) Get(ctx context.Context, id string) (model.Application, error) {
	apps, err := r.store.Applications(ctx)
	if err != nil {
		return model.Application{}, err
	}
	for _, app := range apps {
		if app.ID == id {
			return app, nil
		}
	}
	return model.Application{}, model.ErrNotFound
}

// Draft is the caller-supplied part of a new application.
type Draft struct {
	UserID          string
	ApplicantName   string
	OrgName         string
	ProjectTitle    string
	Area            string
	Summary         string
	AmountRequested float64
	TotalCost       float64
	Priority        string
	Stage1DocRef    string
}

// Create validates and persists a new application. The record enters the
// workflow as Submitted-Stage1 and receives a generated reference code.
// Amounts are stored as given: amountRequested exceeding totalCost is the
// caller's problem to police.
func (r *Registry) Create(ctx context.Context, draft Draft) (model.Application, error) {
	if !model.ValidArea(draft.Area) {
		return model.Application{}, fmt.Errorf("invalid area %q", draft.Area)
	}

	app := model.Application{
		ID:              "app_" + uuid.NewString(),
		UserID:          draft.UserID,
		ApplicantName:   r.sanitizer.Sanitize(draft.ApplicantName),
		OrgName:         r.sanitizer.Sanitize(draft.OrgName),
		ProjectTitle:    r.sanitizer.Sanitize(draft.ProjectTitle),
		Area:            draft.Area,
		Summary:         r.sanitizer.Sanitize(draft.Summary),
		AmountRequested: draft.AmountRequested,
		TotalCost:       draft.TotalCost,
		Status:          model.StatusSubmittedStage1,
		Priority:        draft.Priority,
		CreatedAt:       time.Now(),
		Ref:             GenerateRef(draft.Area),
		Stage1DocRef:    draft.Stage1DocRef,
	}

	err := r.store.UpdateApplications(ctx, func(apps []model.Application) ([]model.Application, error) {
		return append(apps, app), nil
	})
	if err != nil {
		return model.Application{}, err
	}
	return app, nil
}

// GenerateRef builds a human-facing reference code from the area name:
// an uppercased three-letter area prefix plus a random three-digit suffix,
// e.g. PB-BLA-412 for Blaenavon. Suffix collisions are tolerated; the ref
// is a display code, the uuid id is the identity.
func GenerateRef(area string) string {
	prefix := strings.ToUpper(area)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("PB-%s-%d", prefix, 100+rand.Intn(900))
}

// ApplicationUpdate carries updatable fields. Nil pointers leave the stored
// value untouched.
type ApplicationUpdate struct {
	ApplicantName   *string
	OrgName         *string
	ProjectTitle    *string
	Summary         *string
	AmountRequested *float64
	TotalCost       *float64
	Status          *model.Status
	Priority        *string
	Stage1DocRef    *string
	Stage2DocRef    *string
}

// Update merges the supplied fields into an application. Updating an
// unknown id is a no-op. A status outside the enumeration is rejected with
// ErrInvalidStatus; transition legality is the caller's to check via
// Status.CanTransitionTo.
func (r *Registry) Update(ctx context.Context, id string, upd ApplicationUpdate) error {
	if upd.Status != nil && !upd.Status.Valid() {
		return model.ErrInvalidStatus
	}

	return r.store.UpdateApplications(ctx, func(apps []model.Application) ([]model.Application, error) {
		for i := range apps {
			if apps[i].ID != id {
				continue
			}
			if upd.ApplicantName != nil {
				apps[i].ApplicantName = r.sanitizer.Sanitize(*upd.ApplicantName)
			}
			if upd.OrgName != nil {
				apps[i].OrgName = r.sanitizer.Sanitize(*upd.OrgName)
			}
			if upd.ProjectTitle != nil {
				apps[i].ProjectTitle = r.sanitizer.Sanitize(*upd.ProjectTitle)
			}
			if upd.Summary != nil {
				apps[i].Summary = r.sanitizer.Sanitize(*upd.Summary)
			}
			if upd.AmountRequested != nil {
				apps[i].AmountRequested = *upd.AmountRequested
			}
			if upd.TotalCost != nil {
				apps[i].TotalCost = *upd.TotalCost
			}
			if upd.Status != nil {
				apps[i].Status = *upd.Status
			}
			if upd.Priority != nil {
				apps[i].Priority = *upd.Priority
			}
			if upd.Stage1DocRef != nil {
				apps[i].Stage1DocRef = *upd.Stage1DocRef
			}
			if upd.Stage2DocRef != nil {
				apps[i].Stage2DocRef = *upd.Stage2DocRef
			}
			break
		}
		return apps, nil
	})
}

// Delete removes an application and every score recorded against it, in one
// transaction. Deleting an unknown id is a no-op.
func (r *Registry) Delete(ctx context.Context, id string) error {
	return r.store.UpdateApplicationsAndScores(ctx,
		func(apps []model.Application, scores []model.Score) ([]model.Application, []model.Score, error) {
			keptApps := apps[:0]
			for _, app := range apps {
				if app.ID != id {
					keptApps = append(keptApps, app)
				}
			}

			keptScores := scores[:0]
			for _, sc := range scores {
				if sc.AppID != id {
					keptScores = append(keptScores, sc)
				}
			}

			return keptApps, keptScores, nil
		})
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Funding areas. Cross-Area applications are visible to every committee.
const (
	AreaBlaenavon = "Blaenavon"
	AreaThornhill = "Thornhill & Upper Cwmbran"
	AreaTrevethin = "Trevethin, Penygarn & St. Cadocs"
	AreaCross     = "Cross-Area"
)

// AreaFilterAll is the sentinel filter value meaning "no area filter".
const AreaFilterAll = "All"

// Areas returns the three named committee areas, in catalog order.
// Cross-Area is a valid application area but not a committee assignment.
func Areas() []string {
	return []string{AreaBlaenavon, AreaThornhill, AreaTrevethin}
}

// ValidArea reports whether area is an accepted application area.
func ValidArea(area string) bool {
	switch area {
	case AreaBlaenavon, AreaThornhill, AreaTrevethin, AreaCross:
		return true
	}
	return false
}

// Status is the application lifecycle state. The store validates membership
// only; transition legality is a boundary concern (see CanTransitionTo).
type Status string

// Application statuses.
const (
	StatusDraft           Status = "Draft"
	StatusSubmittedStage1 Status = "Submitted-Stage1"
	StatusRejectedStage1  Status = "Rejected-Stage1"
	StatusInvitedStage2   Status = "Invited-Stage2"
	StatusSubmittedStage2 Status = "Submitted-Stage2"
	StatusFinalist        Status = "Finalist"
	StatusRejected        Status = "Rejected"
	StatusFunded          Status = "Funded"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmittedStage1, StatusRejectedStage1,
		StatusInvitedStage2, StatusSubmittedStage2, StatusFinalist,
		StatusRejected, StatusFunded:
		return true
	}
	return false
}

// transitions holds the legal outgoing edges of the status machine.
// Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusSubmittedStage1},
	StatusSubmittedStage1: {StatusRejectedStage1, StatusInvitedStage2},
	StatusInvitedStage2:   {StatusSubmittedStage2},
	StatusSubmittedStage2: {StatusFinalist, StatusRejected},
	StatusFinalist:        {StatusFunded},
}

// CanTransitionTo reports whether moving from s to next follows the
// application workflow. Callers drive transitions; the store only checks
// that stored values are members of the enumeration.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Application represents a funding request.
type Application struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ApplicantName    string    `json:"applicantName"`
	OrgName          string    `json:"orgName"`
	ProjectTitle     string    `json:"projectTitle"`
	Area             string    `json:"area"`
	Summary          string    `json:"summary"`
	AmountRequested  float64   `json:"amountRequested"`
	TotalCost        float64   `json:"totalCost"`
	Status           Status    `json:"status"`
	Priority         string    `json:"priority,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	Ref              string    `json:"ref"` // e.g. PB-BLA-412
	Stage1DocRef     string    `json:"stage1DocRef,omitempty"`
	Stage2DocRef     string    `json:"stage2DocRef,omitempty"`
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Application, Score and the criterion catalog.
package model

// User roles
const (
	RoleGuest     = "guest"
	RoleApplicant = "applicant"
	RoleCommittee = "committee"
	RoleAdmin     = "admin"
)

// CommitteeDomain is the synthetic mail domain appended to bare usernames
// at login so committee members can sign in without typing a full address.
const CommitteeDomain = "committee.local"

// User represents a portal account.
type User struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Username     string `json:"username,omitempty"`
	Role         string `json:"role"`
	Area         string `json:"area,omitempty"` // committee assignment
	DisplayName  string `json:"displayName,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PhotoRef     string `json:"photoRef,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"` // persisted only; cleared before returning to callers
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy of the user with the credential removed.
// Every value leaving the auth gateway goes through this.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// ValidRole reports whether role is one of the enumerated user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleGuest, RoleApplicant, RoleCommittee, RoleAdmin:
		return true
	}
	return false
}

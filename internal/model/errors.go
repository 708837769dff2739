// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "errors"

// Sentinel errors returned by the core. Callers match with errors.Is.
// Deleting a record that does not exist is a no-op, not an error.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidStatus      = errors.New("invalid application status")
)

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// username derivation with Unicode normalization support.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// usernameRegex matches non-alphanumeric characters (except dots)
	usernameRegex = regexp.MustCompile(`[^a-z0-9.]+`)
	// multipleDots matches multiple consecutive dots
	multipleDots = regexp.MustCompile(`\.{2,}`)
)

// UsernameFromDisplayName derives a dotted username from a person's display
// name: "Leanne Lloyd-Tolman" becomes "leanne.lloyd.tolman". Accents are
// decomposed and stripped so the result is plain ASCII.
func UsernameFromDisplayName(name string) string {
	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, name)

	result = strings.ToLower(result)

	// Word separators become dots
	result = strings.ReplaceAll(result, " ", ".")
	result = strings.ReplaceAll(result, "-", ".")

	result = usernameRegex.ReplaceAllString(result, "")
	result = multipleDots.ReplaceAllString(result, ".")
	result = strings.Trim(result, ".")

	return result
}

// UsernameFromEmail returns the lowercased local part of an email address.
func UsernameFromEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}

// IsValidUsername checks if a string is a valid derived username.
func IsValidUsername(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.') {
			return false
		}
	}

	if s[0] == '.' || s[len(s)-1] == '.' {
		return false
	}

	return !strings.Contains(s, "..")
}

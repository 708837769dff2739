// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/pbfund-go/internal/model"
	"github.com/olegiv/pbfund-go/internal/util"
)

// ErrAccountLocked is returned when login throttling or lockout refuses an
// attempt before credentials are even checked.
var ErrAccountLocked = errors.New("account temporarily locked")

// UserStore is the slice of the record store the gateway needs.
type UserStore interface {
	Users(ctx context.Context) ([]model.User, error)
	UpdateUsers(ctx context.Context, fn func([]model.User) ([]model.User, error)) error
}

// Gateway verifies credentials and manages user records. It is stateless:
// no sessions or tokens are issued, identity is re-asserted per call.
type Gateway struct {
	store      UserStore
	protection *Protection
}

// NewGateway creates a gateway. protection may be nil to disable throttling
// (tests exercise both paths).
func NewGateway(store UserStore, protection *Protection) *Gateway {
	return &Gateway{store: store, protection: protection}
}

// NormalizeIdentifier maps a login identifier to a lookup email. Committee
// members sign in with a bare username, which resolves to a synthetic address
// on the committee domain.
func NormalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if !strings.Contains(identifier, "@") {
		return strings.ToLower(identifier) + "@" + model.CommitteeDomain
	}
	return strings.ToLower(identifier)
}

// Login verifies an identifier/password pair and returns the matched user
// with its credential hash cleared. The identifier matches either the
// normalized email or the stored username, case-insensitively. Unknown
// identifier and wrong password are indistinguishable to the caller.
func (g *Gateway) Login(ctx context.Context, identifier, password string) (model.User, error) {
	email := NormalizeIdentifier(identifier)

	if g.protection != nil {
		if locked, _ := g.protection.IsLocked(email); locked {
			return model.User{}, ErrAccountLocked
		}
		if !g.protection.Allow(email) {
			return model.User{}, ErrAccountLocked
		}
	}

	users, err := g.store.Users(ctx)
	if err != nil {
		return model.User{}, err
	}

	raw := strings.TrimSpace(identifier)
	for _, u := range users {
		if !strings.EqualFold(u.Email, email) &&
			!(u.Username != "" && strings.EqualFold(u.Username, raw)) {
			continue
		}

		ok, err := CheckPassword(password, u.PasswordHash)
		if err != nil || !ok {
			g.recordFailure(email)
			return model.User{}, model.ErrInvalidCredentials
		}

		if g.protection != nil {
			g.protection.RecordSuccess(email)
		}
		g.maybeRehash(ctx, u.UID, password)
		return u.Sanitized(), nil
	}

	g.recordFailure(email)
	return model.User{}, model.ErrInvalidCredentials
}

func (g *Gateway) recordFailure(email string) {
	if g.protection == nil {
		return
	}
	g.protection.RecordFailure(email)
}

// maybeRehash upgrades a stored hash to current parameters after a
// successful login. Best effort: a failure here never fails the login.
func (g *Gateway) maybeRehash(ctx context.Context, uid, password string) {
	err := g.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].UID != uid {
				continue
			}
			if !NeedsRehash(users[i].PasswordHash) {
				return users, nil
			}
			hash, err := HashPassword(password)
			if err != nil {
				return nil, err
			}
			users[i].PasswordHash = hash
			return users, nil
		}
		return users, nil
	})
	if err != nil {
		slog.Warn("password rehash failed", "uid", uid, "error", err)
	}
}

// Register creates an applicant account. Email uniqueness is
// case-insensitive; the username defaults to the email local part.
func (g *Gateway) Register(ctx context.Context, email, password, displayName string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	var created model.User
	err = g.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return nil, model.ErrDuplicateEmail
			}
		}

		created = model.User{
			UID:          "user_" + uuid.NewString(),
			Email:        email,
			Username:     util.UsernameFromEmail(email),
			Role:         model.RoleApplicant,
			DisplayName:  displayName,
			PasswordHash: hash,
		}
		return append(users, created), nil
	})
	if err != nil {
		return model.User{}, err
	}
	return created.Sanitized(), nil
}

// ProfileUpdate carries the self-service profile fields. Nil pointers leave
// the stored value untouched.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Phone       *string
	PhotoRef    *string
}

// UpdateProfile merges the supplied fields into a user's own profile.
// The credential hash is never touched here.
func (g *Gateway) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (model.User, error) {
	var updated model.User
	err := g.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].UID != uid {
				continue
			}
			if upd.DisplayName != nil {
				users[i].DisplayName = *upd.DisplayName
			}
			if upd.Bio != nil {
				users[i].Bio = *upd.Bio
			}
			if upd.Phone != nil {
				users[i].Phone = *upd.Phone
			}
			if upd.PhotoRef != nil {
				users[i].PhotoRef = *upd.PhotoRef
			}
			updated = users[i]
			return users, nil
		}
		return nil, model.ErrNotFound
	})
	if err != nil {
		return model.User{}, err
	}
	return updated.Sanitized(), nil
}

// Users returns every user record with credential hashes cleared.
func (g *Gateway) Users(ctx context.Context) ([]model.User, error) {
	users, err := g.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}

// CreateUserParams is the admin provisioning input.
type CreateUserParams struct {
	Email       string
	Password    string
	Role        string
	Area        string
	DisplayName string
}

// CreateUser provisions an account with an explicit role, typically a
// committee member. The username is derived from the display name when one
// is given, otherwise from the email local part.
func (g *Gateway) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if !model.ValidRole(params.Role) {
		return model.User{}, fmt.Errorf("invalid role %q", params.Role)
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	username := util.UsernameFromEmail(email)
	if params.DisplayName != "" {
		username = util.UsernameFromDisplayName(params.DisplayName)
	}

	var created model.User
	err = g.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return nil, model.ErrDuplicateEmail
			}
		}

		created = model.User{
			UID:          "user_" + uuid.NewString(),
			Email:        email,
			Username:     username,
			Role:         params.Role,
			Area:         params.Area,
			DisplayName:  params.DisplayName,
			PasswordHash: hash,
		}
		return append(users, created), nil
	})
	if err != nil {
		return model.User{}, err
	}
	return created.Sanitized(), nil
}

// UserUpdate carries the admin-editable fields. Nil pointers leave the
// stored value untouched; the credential hash is always preserved.
type UserUpdate struct {
	Email       *string
	Role        *string
	Area        *string
	DisplayName *string
	Username    *string
}

// UpdateUser merges the supplied fields into an account.
func (g *Gateway) UpdateUser(ctx context.Context, uid string, upd UserUpdate) (model.User, error) {
	var updated model.User
	err := g.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		idx := -1
		for i := range users {
			if users[i].UID == uid {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, model.ErrNotFound
		}

		if upd.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*upd.Email))
			for i, u := range users {
				if i != idx && strings.EqualFold(u.Email, email) {
					return nil, model.ErrDuplicateEmail
				}
			}
			users[idx].Email = email
		}
		if upd.Role != nil {
			if !model.ValidRole(*upd.Role) {
				return nil, fmt.Errorf("invalid role %q", *upd.Role)
			}
			users[idx].Role = *upd.Role
		}
		if upd.Area != nil {
			users[idx].Area = *upd.Area
		}
		if upd.DisplayName != nil {
			users[idx].DisplayName = *upd.DisplayName
		}
		if upd.Username != nil {
			users[idx].Username = *upd.Username
		}

		updated = users[idx]
		return users, nil
	})
	if err != nil {
		return model.User{}, err
	}
	return updated.Sanitized(), nil
}

// ResetPassword replaces an account's credential with a freshly hashed one.
func (g *Gateway) ResetPassword(ctx context.Context, uid, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return g.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].UID == uid {
				users[i].PasswordHash = hash
				return users, nil
			}
		}
		return nil, model.ErrNotFound
	})
}

// DeleteUser removes an account. Deleting an unknown uid is a no-op; the
// user's applications and scores are left in place.
func (g *Gateway) DeleteUser(ctx context.Context, uid string) error {
	return g.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		out := users[:0]
		for _, u := range users {
			if u.UID != uid {
				out = append(out, u)
			}
		}
		return out, nil
	})
}

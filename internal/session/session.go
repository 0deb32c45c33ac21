// Package session keeps the display-only identity shown on the dashboard
// and printed on exported reports. Nothing is verified.
package session

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ai-nutricare/internal/storage"
)

// Storage keys of the held identity.
const (
	KeyName  = "userName"
	KeyEmail = "userEmail"
)

// Fallbacks shown when no identity is held.
const (
	DefaultName  = "User"
	DefaultEmail = "user@example.com"
)

// Identity is who the dashboard greets.
type Identity struct {
	Name  string
	Email string
}

// InferName derives a display name from the local part of an email address
// with its first letter upper-cased.
func InferName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}

// Manager reads and writes the identity through a KV store.
type Manager struct {
	kv storage.KV
}

// NewManager returns a Manager over kv.
func NewManager(kv storage.KV) *Manager {
	return &Manager{kv: kv}
}

// SignIn holds email and, when no name is held yet, a name inferred from it.
func (m *Manager) SignIn(ctx context.Context, email string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Identity{}, fmt.Errorf("email is required")
	}
	if err := m.kv.Set(ctx, KeyEmail, email); err != nil {
		return Identity{}, err
	}
	name, hasName, err := m.kv.Get(ctx, KeyName)
	if err != nil {
		return Identity{}, err
	}
	if !hasName || name == "" {
		if err := m.kv.Set(ctx, KeyName, InferName(email)); err != nil {
			return Identity{}, err
		}
	}
	return m.Current(ctx)
}

// SignUp holds both name and email.
func (m *Manager) SignUp(ctx context.Context, name, email string) (Identity, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return Identity{}, fmt.Errorf("name and email are required")
	}
	if err := m.kv.Set(ctx, KeyName, name); err != nil {
		return Identity{}, err
	}
	if err := m.kv.Set(ctx, KeyEmail, email); err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Email: email}, nil
}

// SignOut removes both keys before returning.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.kv.Delete(ctx, KeyName, KeyEmail); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// Current returns the held identity with defaults for missing values.
func (m *Manager) Current(ctx context.Context) (Identity, error) {
	id := Identity{Name: DefaultName, Email: DefaultEmail}
	if v, ok, err := m.kv.Get(ctx, KeyName); err != nil {
		return id, err
	} else if ok && v != "" {
		id.Name = v
	}
	if v, ok, err := m.kv.Get(ctx, KeyEmail); err != nil {
		return id, err
	} else if ok && v != "" {
		id.Email = v
	}
	return id, nil
}

// Package identity defines the user directory contract.
//
// HarborDrive does not manage accounts itself; it resolves share
// recipients against whatever directory the embedding application
// provides. The in-memory implementation here serves tests and
// single-node deployments seeded from configuration.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUserNotFound indicates no user matches the given email or id.
var ErrUserNotFound = errors.New("user not found")

// User is a directory entry. HarborDrive never stores passwords or
// session state; authentication is the embedding application's concern.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Directory looks up users for share-recipient resolution.
type Directory interface {
	// FindUserByEmail returns the user with the given email,
	// case-insensitively, or ErrUserNotFound.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// FindUserByID returns the user with the given id, or ErrUserNotFound.
	FindUserByID(ctx context.Context, id string) (*User, error)
}

// MemoryDirectory is a map-backed Directory.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User
}

// NewMemoryDirectory builds a directory pre-populated with users.
func NewMemoryDirectory(users ...*User) *MemoryDirectory {
	d := &MemoryDirectory{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
	for _, u := range users {
		d.Add(u)
	}
	return d
}

// Add inserts or replaces a user.
func (d *MemoryDirectory) Add(u *User) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cp := *u
	d.byID[cp.ID] = &cp
	d.byEmail[strings.ToLower(cp.Email)] = &cp
}

// FindUserByEmail implements Directory.
func (d *MemoryDirectory) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// FindUserByID implements Directory.
func (d *MemoryDirectory) FindUserByID(ctx context.Context, id string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

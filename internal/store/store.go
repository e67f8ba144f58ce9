// Package store persists generated function source code by name.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotFound is returned when no function with the given name is stored.
	ErrNotFound = errors.New("store: function not found")

	// ErrInvalidName is returned for names that are not valid identifiers.
	ErrInvalidName = errors.New("store: invalid function name")
)

// Store saves and retrieves rendered functions. Implementations must be safe
// for concurrent use.
type Store interface {
	// Save stores source under name, replacing any previous version.
	Save(ctx context.Context, name, source string) error

	// Load returns the source stored under name or [ErrNotFound].
	Load(ctx context.Context, name string) (string, error)

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Delete removes name or returns [ErrNotFound].
	Delete(ctx context.Context, name string) error
}

// Pinger is implemented by stores that can report whether their backend is
// reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateName reports whether name can be stored.
func ValidateName(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

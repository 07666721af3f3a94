// Package kv provides text key-value stores used as the local persistence
// medium for timer snapshots, profile, token and settings.
package kv

import (
	"context"
	"fmt"
	"regexp"

	apperrors "watchless/internal/platform/errors"
)

// Store holds text values under flat keys. Get returns
// apperrors.ErrKeyNotFound for a missing key; Delete of a missing key is not
// an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Watcher is implemented by stores that can report changes made by other
// processes.
type Watcher interface {
	Watch(ctx context.Context, onChange func(key string)) error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || !validKey.MatchString(key) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, key)
	}
	return nil
}

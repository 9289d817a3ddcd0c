package corpus

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created in the corpus root while a mutating run holds it.
const LockFileName = ".tagsync.lock"

// ErrLocked is returned when another run already holds the corpus.
var ErrLocked = errors.New("corpus is locked by another tagsync run")

// Lock takes the exclusive single-writer lock for root. The returned
// function releases it.
func Lock(root string) (func() error, error) {
	lock := flock.New(filepath.Join(root, LockFileName))

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock.Unlock, nil
}

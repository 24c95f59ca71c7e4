// Package lock serializes mutating operations per file using OS-level
// advisory locks, so concurrent edit requests against the same path see a
// consistent read-modify-write cycle.
package lock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLockTimeout is returned when acquiring a lock times out.
	ErrLockTimeout = errors.New("timeout acquiring lock")
	// ErrPathRequired is returned when the file path is empty.
	ErrPathRequired = errors.New("file path is required")
	// ErrNilLock is returned when a nil lock handle is released.
	ErrNilLock = errors.New("nil lock handle")
)

// pollInterval is how often a contended lock is retried.
const pollInterval = 10 * time.Millisecond

// FileLock is a handle to a held OS-level file lock.
type FileLock struct {
	FilePath string
	flock    *flock.Flock
}

// Manager acquires and releases exclusive per-file locks.
type Manager interface {
	AcquireLock(filePath string, timeout time.Duration) (*FileLock, error)
	ReleaseLock(lock *FileLock) error
}

// FlockManager implements Manager with gofrs/flock. Lock files are hidden
// siblings of the target (".name.lock") so they remain confined to the
// working directory but stay out of directory listings.
type FlockManager struct{}

// NewFlockManager initializes and returns a new FlockManager.
func NewFlockManager() *FlockManager {
	return &FlockManager{}
}

var _ Manager = (*FlockManager)(nil)

// AcquireLock obtains an exclusive OS-level lock for the given file,
// polling until timeout.
func (m *FlockManager) AcquireLock(filePath string, timeout time.Duration) (*FileLock, error) {
	if filePath == "" {
		return nil, ErrPathRequired
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fl := flock.New(lockPath(filePath))
	locked, err := fl.TryLockContext(ctx, pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("acquire file lock for %s: %w", filePath, err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return &FileLock{FilePath: filePath, flock: fl}, nil
}

// ReleaseLock releases the given OS-level lock.
func (m *FlockManager) ReleaseLock(lock *FileLock) error {
	if lock == nil {
		return ErrNilLock
	}
	if lock.flock != nil {
		_ = lock.flock.Unlock()
	}
	return nil
}

func lockPath(filePath string) string {
	dir, base := filepath.Dir(filePath), filepath.Base(filePath)
	return filepath.Join(dir, "."+base+".lock")
}

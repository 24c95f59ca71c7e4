package lock

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	m := NewFlockManager()
	target := filepath.Join(t.TempDir(), "notes.txt")

	l, err := m.AcquireLock(target, time.Second)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, target, l.FilePath)

	require.NoError(t, m.ReleaseLock(l))
}

func TestAcquireEmptyPath(t *testing.T) {
	m := NewFlockManager()

	_, err := m.AcquireLock("", time.Second)
	assert.ErrorIs(t, err, ErrPathRequired)
}

func TestReleaseNilLock(t *testing.T) {
	m := NewFlockManager()

	assert.ErrorIs(t, m.ReleaseLock(nil), ErrNilLock)
}

func TestReacquireAfterRelease(t *testing.T) {
	m := NewFlockManager()
	target := filepath.Join(t.TempDir(), "notes.txt")

	l1, err := m.AcquireLock(target, time.Second)
	require.NoError(t, err)
	require.NoError(t, m.ReleaseLock(l1))

	l2, err := m.AcquireLock(target, time.Second)
	require.NoError(t, err)
	require.NoError(t, m.ReleaseLock(l2))
}

func TestLockFileIsHiddenSibling(t *testing.T) {
	assert.Equal(t, filepath.Join("/work", ".a.txt.lock"), lockPath(filepath.Join("/work", "a.txt")))
}

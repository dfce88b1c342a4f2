package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockConfig() DataLockConfig {
	return DataLockConfig{
		Timeout:  200 * time.Millisecond,
		Retry:    20 * time.Millisecond,
		MaxRetry: 5,
	}
}

func TestAcquireDataLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireDataLock(dir, lockConfig())
	require.NoError(t, err)
	defer lock.Unlock()

	assert.FileExists(t, filepath.Join(dir, "agendum.lock"))
}

func TestAcquireDataLock_SecondHolderTimesOut(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireDataLock(dir, lockConfig())
	require.NoError(t, err)
	defer lock.Unlock()

	_, err = AcquireDataLock(dir, lockConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by another instance")
}

func TestAcquireDataLock_ReleasedLockCanBeRetaken(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireDataLock(dir, lockConfig())
	require.NoError(t, err)
	lock.Unlock()

	lock, err = AcquireDataLock(dir, lockConfig())
	require.NoError(t, err)
	lock.Unlock()
}

func TestAcquireDataLock_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	lock, err := AcquireDataLock(dir, lockConfig())
	require.NoError(t, err)
	defer lock.Unlock()

	assert.DirExists(t, dir)
}

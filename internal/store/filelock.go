package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DataLock guards the data directory so a second serve instance cannot open
// the same database file underneath a running one.
type DataLock struct {
	fileLock   *flock.Flock
	lockPath   string
	acquiredAt time.Time
}

type DataLockConfig struct {
	Timeout  time.Duration
	Retry    time.Duration
	MaxRetry int
}

// AcquireDataLock takes an exclusive lock on <dir>/agendum.lock, retrying
// until the lock is held or the retry budget runs out.
func AcquireDataLock(dir string, cfg DataLockConfig) (*DataLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	lockPath := filepath.Join(dir, "agendum.lock")
	fl := &DataLock{
		fileLock: flock.New(lockPath),
		lockPath: lockPath,
	}

	deadline := time.Now().Add(cfg.Timeout)
	for i := 0; i < cfg.MaxRetry; i++ {
		locked, err := fl.fileLock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("attempt data lock: %w", err)
		}
		if locked {
			fl.acquiredAt = time.Now()
			slog.Info("Data lock acquired", "path", lockPath)
			return fl, nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(cfg.Retry)
	}

	return nil, fmt.Errorf("data directory %s is locked by another instance (timeout after %v)", dir, cfg.Timeout)
}

// Unlock releases the lock. Safe to call once.
func (fl *DataLock) Unlock() {
	if fl.fileLock == nil {
		return
	}
	held := time.Since(fl.acquiredAt)
	if err := fl.fileLock.Unlock(); err != nil {
		slog.Error("Failed to release data lock", "path", fl.lockPath, "error", err)
		return
	}
	slog.Info("Data lock released", "path", fl.lockPath, "held_ms", held.Milliseconds())
}

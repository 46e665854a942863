package filelock

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLockSerializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.lock")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(path, func() error {
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestWithLockReturnsFnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.lock")
	boom := errors.New("boom")

	err := WithLock(path, func() error { return boom })
	require.ErrorIs(t, err, boom)

	// the lock was released
	require.NoError(t, WithLock(path, func() error { return nil }))
}

func TestLockMissingDir(t *testing.T) {
	_, err := Lock(filepath.Join(t.TempDir(), "missing", "data.lock"))
	assert.Error(t, err)
}

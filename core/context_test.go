package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withForce(withFileID(context.Background(), "file-1"), true)

	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "file-1", fileIDFromContext(ctx), "Goroutine %d: fileID should match", i)
			assert.True(t, isForced(ctx), "Goroutine %d: isForced should be true", i)
		}()
	}
	wg.Wait()
}

// TestContextIsolation tests that different contexts maintain isolation.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	ctx1 := withFileID(base, "a")
	ctx2 := withForce(withFileID(base, "b"), false)

	assert.Equal(t, "a", fileIDFromContext(ctx1))
	assert.False(t, isForced(ctx1))
	assert.Equal(t, "b", fileIDFromContext(ctx2))
	assert.False(t, isForced(ctx2))
	assert.Empty(t, fileIDFromContext(base))
}

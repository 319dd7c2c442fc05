package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDs_StartAtOne(t *testing.T) {
	ids := NewIDs()
	assert.Equal(t, int64(0), ids.Current())
	assert.Equal(t, int64(1), ids.Next())
	assert.Equal(t, int64(2), ids.Next())
	assert.Equal(t, int64(2), ids.Current())
}

func TestIDs_ConcurrentUnique(t *testing.T) {
	ids := NewIDs()
	var wg sync.WaitGroup
	seen := sync.Map{}
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, dup := seen.LoadOrStore(ids.Next(), true)
				assert.False(t, dup)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), ids.Current())
}

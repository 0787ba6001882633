package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_ReplaceAndSnapshot(t *testing.T) {
	b := NewBuffer[string]()
	assert.Zero(t, b.Size())
	assert.Empty(t, b.Snapshot())

	items := []string{"a", "b"}
	b.Replace(items)
	items[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, b.Snapshot())
	assert.Equal(t, 2, b.Size())

	snap := b.Snapshot()
	snap[1] = "changed"
	assert.Equal(t, []string{"a", "b"}, b.Snapshot())

	b.Replace([]string{"c"})
	assert.Equal(t, []string{"c"}, b.Snapshot())

	b.Flush()
	assert.Zero(t, b.Size())
}

func TestBuffer_ConcurrentReplaceIsAtomic(t *testing.T) {
	b := NewBuffer[int]()
	first := []int{1, 1, 1}
	second := []int{2, 2, 2, 2}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Replace(first)
		}()
		go func() {
			defer wg.Done()
			snap := b.Snapshot()
			if len(snap) == 0 {
				return
			}
			for _, v := range snap {
				assert.Equal(t, snap[0], v)
			}
		}()
	}
	wg.Wait()

	b.Replace(second)
	assert.Equal(t, second, b.Snapshot())
}

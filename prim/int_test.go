package prim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntOps(t *testing.T) {
	i := NewInt(5)
	assert.Equal(t, int64(6), i.Increment())
	assert.Equal(t, int64(5), i.Decrement())
	assert.Equal(t, int64(5), i.Load())

	assert.Equal(t, 1, i.Compare(4))
	assert.Equal(t, 0, i.Compare(5))
	assert.Equal(t, -1, i.Compare(6))

	i.Store(-1)
	assert.Equal(t, -1, i.Compare(0))
}

func TestIntZeroValue(t *testing.T) {
	var i Int
	assert.Equal(t, int64(0), i.Load())
	assert.Equal(t, int64(1), i.Increment())
}

func TestIntConcurrent(t *testing.T) {
	const goroutines, n = 8, 10000
	var i Int
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n; j++ {
				i.Increment()
				i.Increment()
				i.Decrement()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(goroutines*n), i.Load())
}

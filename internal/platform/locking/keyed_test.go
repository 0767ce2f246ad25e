package locking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	var m KeyedMutex
	counter := 0

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			err := m.Do("agent-1", func() error {
				counter++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter, "increments under the same key must not race")
}

func TestKeyedMutexPropagatesError(t *testing.T) {
	var m KeyedMutex
	sentinel := assert.AnError

	err := m.Do("k", func() error { return sentinel })
	require.ErrorIs(t, err, sentinel)
}

package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionalRWMutexSerializesWriters(t *testing.T) {
	m := OptionalRWMutex{UseMutex: true}
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 8000, counter)
}

func TestOptionalRWMutexDisabledDoesNotLock(t *testing.T) {
	m := OptionalRWMutex{}
	m.Lock()
	m.Lock()
	m.RLock()
	m.Unlock()

	require.True(t, m.Mutex.TryLock())
	m.Mutex.Unlock()
}

func TestOptionalRWMutexReaders(t *testing.T) {
	m := OptionalRWMutex{UseMutex: true}
	m.RLock()
	m.RLock()
	require.False(t, m.Mutex.TryLock())
	m.RUnlock()
	m.RUnlock()

	m.Lock()
	require.False(t, m.Mutex.TryRLock())
	m.Unlock()
}

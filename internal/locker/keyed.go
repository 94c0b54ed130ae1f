package locker

import (
	"context"
	"fmt"
	"sync"

	"github.com/you-humble/paystack-checkout/internal/model"
)

type entry struct {
	sem  chan struct{}
	refs int
}

type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyedMutex returns an in-process lock table. Entries are dropped once
// nobody holds or waits for the key.
func NewKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*entry)}
}

func (m *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	const op = "locker.keyedMutex.Lock"

	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, fmt.Errorf("%s: %w: %w", op, model.ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.release(key, e)
		})
	}, nil
}

func (m *keyedMutex) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

func (m *keyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

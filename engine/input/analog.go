package input

import (
	"sync"
)

// Analog stores the last reported value per key. Unseen keys read 0.
type Analog[K comparable] struct {
	mu     *sync.Mutex
	values map[K]float64
}

// NewAnalog creates an empty store.
func NewAnalog[K comparable]() *Analog[K] {
	return &Analog[K]{
		mu:     &sync.Mutex{},
		values: make(map[K]float64),
	}
}

// Get returns the stored value for key, or 0.
func (a *Analog[K]) Get(key K) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[key]
}

// Set stores the value for key.
func (a *Analog[K]) Set(key K, value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[key] = value
}

// Clear forgets every key matching fn.
func (a *Analog[K]) Clear(fn func(K) bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k := range a.values {
		if fn(k) {
			delete(a.values, k)
		}
	}
}

// Len returns the number of stored keys.
func (a *Analog[K]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.values)
}

package hl7

import (
	"reflect"
	"sync"
)

var (
	registry   = make(map[reflect.Type]*bindPlan)
	registryMu sync.RWMutex
)

// planFor returns the cached binding plan for T, scanning it on first use.
func planFor[T any]() (*bindPlan, error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[typ]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[typ]; ok {
		return cached, nil
	}

	plan, err := buildBindPlan[T]()
	if err != nil {
		return nil, err
	}
	registry[typ] = plan
	return plan, nil
}

// Use returns a Processor for the policy declared by T's struct tags.
func Use[T any](codec Codec) (*Processor, error) {
	policy, err := PolicyOf[T]()
	if err != nil {
		return nil, err
	}
	return NewProcessor(codec, policy)
}

// Reset clears the binding plan cache.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]*bindPlan)
}

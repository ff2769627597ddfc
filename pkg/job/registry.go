package job

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

type executor func(ctx context.Context, payload json.RawMessage) error

type registry struct {
	executors map[string]executor
	mu        sync.RWMutex
}

func newRegistry() *registry {
	return &registry{executors: make(map[string]executor)}
}

func (r *registry) add(name string, exec executor) {
	r.mu.Lock()
	r.executors[name] = exec
	r.mu.Unlock()
}

func (r *registry) lookup(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exec, ok := r.executors[name]
	return exec, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// typedExecutor decodes the payload into P before calling handle.
// An empty payload leaves P at its zero value.
func typedExecutor[P any](handle func(context.Context, P) error) executor {
	return func(ctx context.Context, raw json.RawMessage) error {
		var payload P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return errors.Join(ErrInvalidPayload, err)
			}
		}
		return handle(ctx, payload)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the process-wide mapping from path name to published
// path. Create one at startup with [NewRegistry], hand it to the store
// loader, the recorder, and the replay layer, and [Registry.Clear] it
// at shutdown.
//
// Registry is safe for concurrent use. Lookups take a read lock;
// registration takes the write lock only for the check-and-insert.
type Registry struct {
	mu    sync.RWMutex
	paths map[string]*Path
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{paths: make(map[string]*Path)}
}

// Find returns the path registered under name, or an error wrapping
// [ErrNotFound].
func (r *Registry) Find(name string) (*Path, error) {
	r.mu.RLock()
	path, ok := r.paths[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return path, nil
}

// Register publishes path under its name unless the name is already
// taken. It returns the path that is registered after the call and
// whether this call inserted it. When the name was taken, the existing
// path is returned and inserted is false.
func (r *Registry) Register(path *Path) (registered *Path, inserted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.paths[path.name]; ok {
		return existing, false
	}
	r.paths[path.name] = path
	return path, true
}

// Len returns the number of registered paths.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.paths)
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Paths returns every registered path ordered by name.
func (r *Registry) Paths() []*Path {
	r.mu.RLock()
	paths := make([]*Path, 0, len(r.paths))
	for _, path := range r.paths {
		paths = append(paths, path)
	}
	r.mu.RUnlock()

	sort.Slice(paths, func(i, j int) bool { return paths[i].name < paths[j].name })
	return paths
}

// Clear drops every registration. Paths already handed out stay valid;
// they are simply no longer findable.
func (r *Registry) Clear() {
	r.mu.Lock()
	clear(r.paths)
	r.mu.Unlock()
}

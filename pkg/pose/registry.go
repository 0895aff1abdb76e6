package pose

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mirrorstage/go-avatar/internal/log"
)

// Registry holds named poses available for runtime swaps.
type Registry struct {
	mu    sync.RWMutex
	poses map[string]*Snapshot
}

// NewRegistry creates an empty pose registry.
func NewRegistry() *Registry {
	return &Registry{
		poses: make(map[string]*Snapshot),
	}
}

// Register adds a pose to the registry, replacing any pose with the
// same name.
func (r *Registry) Register(s *Snapshot) error {
	if s == nil {
		return ErrNilSnapshot
	}
	if s.Name == "" {
		return ErrNoName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.poses[s.Name] = s
	return nil
}

// Unregister removes a pose by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.poses, name)
}

// Get retrieves a pose by name.
func (r *Registry) Get(name string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.poses[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// List returns all registered pose names, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.poses))
	for name := range r.poses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered poses.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.poses)
}

// LoadDirectory loads every *.json pose in dir into the registry.
// Files that fail to parse are skipped with a warning so one bad
// export doesn't take the pose pack down. Returns how many loaded.
func (r *Registry) LoadDirectory(ctx context.Context, dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("pose: list %q: %w", dir, err)
	}

	loaded := 0
	for _, file := range files {
		s, err := Load(ctx, file)
		if err != nil {
			log.Warn("skipping pose file", "path", file, "error", err)
			continue
		}
		if err := r.Register(s); err != nil {
			log.Warn("skipping pose file", "path", file, "error", err)
			continue
		}
		loaded++
	}
	return loaded, nil
}

package grinder

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"tangled.org/arabica.social/dialin/internal/models"
)

// Registry is the grinder table in use. Lookups are safe for concurrent use
// and the whole table can be swapped at once when the profile file changes.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry creates a registry holding the given profiles.
// Invalid profiles are rejected; use Replace to swap the table later.
func NewRegistry(profiles []Profile) (*Registry, error) {
	r := &Registry{}
	if err := r.Replace(profiles); err != nil {
		return nil, err
	}
	return r, nil
}

// NewDefaultRegistry creates a registry holding only the built-in table.
func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(Default())
	if err != nil {
		// The built-in table is covered by tests.
		panic(err)
	}
	return r
}

// Replace validates profiles and installs them as the new table.
// On error the previous table stays in place.
func (r *Registry) Replace(profiles []Profile) error {
	next := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		key := normalizeName(p.Name)
		if _, dup := next[key]; dup {
			return fmt.Errorf("%w: duplicate grinder %q", ErrInvalidProfile, p.Name)
		}
		next[key] = p
	}
	if len(next) == 0 {
		return fmt.Errorf("%w: table is empty", ErrInvalidProfile)
	}

	r.mu.Lock()
	r.profiles = next
	r.mu.Unlock()
	return nil
}

// Lookup finds a grinder by name. Matching ignores case and extra whitespace.
// An empty name resolves to the default grinder.
func (r *Registry) Lookup(name string) (Profile, error) {
	if strings.TrimSpace(name) == "" {
		name = Sculptor064S
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[normalizeName(name)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownGrinder, name)
	}
	return p, nil
}

// Range returns the dial range of a grinder for a method.
func (r *Registry) Range(name string, m models.Method) (Profile, MethodRange, error) {
	p, err := r.Lookup(name)
	if err != nil {
		return Profile{}, MethodRange{}, err
	}
	mr, err := p.Range(m)
	if err != nil {
		return Profile{}, MethodRange{}, err
	}
	return p, mr, nil
}

// List returns every profile sorted by name.
func (r *Registry) List() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the grinder names sorted alphabetically.
func (r *Registry) Names() []string {
	profiles := r.List()
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}

// Count returns the number of grinders in the table.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// normalizeName lowercases, trims whitespace, and collapses internal whitespace.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

package validate

import (
	"github.com/ryanuber/go-glob"
)

// Registry maps stable check ids to implementations
// Registration order is kept and used as default run order
type Registry struct {
	ids    []string
	checks map[string]Check
}

// NewRegistry creates empty registry
func NewRegistry() *Registry {
	return &Registry{
		ids:    make([]string, 0),
		checks: make(map[string]Check),
	}
}

// Register adds a check under id
func (r *Registry) Register(id string, c Check) error {
	if id == "" {
		return ErrInvalidCheck{ID: id, Msg: "empty id"}
	}
	if _, ok := r.checks[id]; ok {
		return ErrDuplicateCheck{ID: id}
	}
	switch c.(type) {
	case RuleCheck, ItemCheck:
	default:
		return ErrInvalidCheck{ID: id, Msg: "must implement RuleCheck or ItemCheck"}
	}
	r.ids = append(r.ids, id)
	r.checks[id] = c
	return nil
}

// IDs returns registered ids in declaration order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Get looks up a single check
func (r *Registry) Get(id string) (Check, bool) {
	c, ok := r.checks[id]
	return c, ok
}

// Resolve returns checks for ids in requested order
// No ids means every registered check in declaration order
func (r *Registry) Resolve(ids ...string) ([]Check, error) {
	if len(ids) == 0 {
		ids = r.ids
	}
	out := make([]Check, 0, len(ids))
	for _, id := range ids {
		c, ok := r.checks[id]
		if !ok {
			return nil, ErrUnknownCheck{ID: id}
		}
		out = append(out, c)
	}
	return out, nil
}

// Match returns registered ids that match any of the glob patterns, in declaration order
// Pattern without wildcards must match id exactly
func (r *Registry) Match(patterns ...string) []string {
	out := make([]string, 0)
	for _, id := range r.ids {
		if matchAny(id, patterns) {
			out = append(out, id)
		}
	}
	return out
}

// Without drops ids that match any of the glob patterns
func (r *Registry) Without(ids []string, patterns ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !matchAny(id, patterns) {
			out = append(out, id)
		}
	}
	return out
}

// Select combines include and exclude lists into a resolved check list
// Include patterns that match nothing are reported as unknown checks
func (r *Registry) Select(include, exclude []string) ([]Check, error) {
	ids := r.IDs()
	if len(include) > 0 {
		for _, p := range include {
			if len(r.Match(p)) == 0 {
				return nil, ErrUnknownCheck{ID: p}
			}
		}
		ids = r.Match(include...)
	}
	ids = r.Without(ids, exclude...)
	if len(ids) == 0 {
		return []Check{}, nil
	}
	return r.Resolve(ids...)
}

func matchAny(id string, patterns []string) bool {
	for _, p := range patterns {
		if glob.Glob(p, id) {
			return true
		}
	}
	return false
}

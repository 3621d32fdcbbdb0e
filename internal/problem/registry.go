package problem

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

// Registry provides access to practice problems
type Registry struct {
	mu       sync.RWMutex
	order    []string
	problems map[string]*domain.Problem
}

// NewRegistry creates a registry from a list of problems.
// Duplicate IDs are rejected.
func NewRegistry(problems []*domain.Problem) (*Registry, error) {
	r := &Registry{problems: make(map[string]*domain.Problem, len(problems))}
	if err := r.replace(problems); err != nil {
		return nil, err
	}
	return r, nil
}

// NewBuiltinRegistry creates a registry from the embedded catalog
func NewBuiltinRegistry() (*Registry, error) {
	problems, err := Builtin()
	if err != nil {
		return nil, err
	}
	return NewRegistry(problems)
}

// Reload swaps in a new set of problems
func (r *Registry) Reload(problems []*domain.Problem) error {
	return r.replace(problems)
}

func (r *Registry) replace(problems []*domain.Problem) error {
	order := make([]string, 0, len(problems))
	byID := make(map[string]*domain.Problem, len(problems))
	for _, p := range problems {
		if _, dup := byID[p.ID]; dup {
			return fmt.Errorf("%w: duplicate problem %s", domain.ErrConfiguration, p.ID)
		}
		byID[p.ID] = p
		order = append(order, p.ID)
	}

	r.mu.Lock()
	r.order = order
	r.problems = byID
	r.mu.Unlock()
	return nil
}

// List returns all problems in catalog order
func (r *Registry) List() []*domain.Problem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	problems := make([]*domain.Problem, 0, len(r.order))
	for _, id := range r.order {
		problems = append(problems, r.problems[id])
	}
	return problems
}

// Get returns a problem by public ID or problem type tag
func (r *Registry) Get(id string) (*domain.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.problems[id]; ok {
		return p, nil
	}
	if pt, err := domain.ParseProblem(id); err == nil {
		if p, ok := r.problems[pt.ID()]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProblemNotFound, id)
}

// StarterCode returns the starter template of a problem for a language
func (r *Registry) StarterCode(id string, lang domain.Language) (string, error) {
	p, err := r.Get(id)
	if err != nil {
		return "", err
	}
	code, ok := p.Starter(lang)
	if !ok {
		return "", fmt.Errorf("%w: no %s starter for %s", domain.ErrNotFound, lang, p.ID)
	}
	return code, nil
}

// Next returns the problem after id in catalog order.
// Returns nil when id is the last problem.
func (r *Registry) Next(id string) (*domain.Problem, error) {
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, pid := range r.order {
		if pid == current.ID && i+1 < len(r.order) {
			return r.problems[r.order[i+1]], nil
		}
	}
	return nil, nil
}

// ByDifficulty returns problems with the given difficulty in catalog order
func (r *Registry) ByDifficulty(d domain.Difficulty) []*domain.Problem {
	var out []*domain.Problem
	for _, p := range r.List() {
		if p.Difficulty == d {
			out = append(out, p)
		}
	}
	return out
}

package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCheckTimeout bounds a single health check
const DefaultCheckTimeout = 2 * time.Second

// Status is the outcome of one health check
type Status struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Report is the outcome of checking every registered service
type Report struct {
	Ready    bool              `json:"ready"`
	Services map[string]Status `json:"services"`
}

// Registry manages the checkers of backing services
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	timeout  time.Duration
}

// NewRegistry creates a new service registry
func NewRegistry() *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		timeout:  DefaultCheckTimeout,
	}
}

// Register adds a checker under its own name, replacing any previous one
func (r *Registry) Register(c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[c.Name()] = c
}

// Get retrieves a checker by name
func (r *Registry) Get(name string) Checker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checkers[name]
}

// List returns all registered service names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll checks every registered service concurrently, each under
// its own timeout. The report is ready only if every check passed.
func (r *Registry) HealthCheckAll(ctx context.Context) Report {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.checkers))
	for _, c := range r.checkers {
		checkers = append(checkers, c)
	}
	timeout := r.timeout
	r.mu.RUnlock()

	statuses := make([]Status, len(checkers))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			if err := c.HealthCheck(cctx); err != nil {
				statuses[i] = Status{Error: err.Error()}
				return nil
			}
			statuses[i] = Status{Healthy: true}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Ready: true, Services: make(map[string]Status, len(checkers))}
	for i, c := range checkers {
		report.Services[c.Name()] = statuses[i]
		if !statuses[i].Healthy {
			report.Ready = false
		}
	}
	return report
}

// Unregister removes a checker from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

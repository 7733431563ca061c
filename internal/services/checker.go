// Package services tracks the backing services pathfinder depends on and
// reports their health for the readiness probe.
package services

import (
	"context"
)

// Checker is a backing service that can report whether it is reachable
type Checker interface {
	// Name returns the service name used in readiness reports
	Name() string

	// HealthCheck returns nil when the service is usable
	HealthCheck(ctx context.Context) error
}

// BaseChecker provides the name for checkers
type BaseChecker struct {
	name string
}

// Name returns the service name
func (c *BaseChecker) Name() string {
	return c.name
}

// FuncChecker adapts a ping function to Checker
type FuncChecker struct {
	BaseChecker
	fn func(ctx context.Context) error
}

// NewFuncChecker wraps fn under the given name
func NewFuncChecker(name string, fn func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{BaseChecker: BaseChecker{name: name}, fn: fn}
}

// HealthCheck calls the wrapped function
func (c *FuncChecker) HealthCheck(ctx context.Context) error {
	return c.fn(ctx)
}

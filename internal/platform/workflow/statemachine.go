// Package workflow provides the shared guarded state machine used by
// decision and hypothesis lifecycles. A machine is a closed table mapping
// each state to its legal successor set; every status change in the
// workflow modules must pass Validate before any row is mutated.
package workflow

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is the sentinel matched by errors.Is for any
// transition rejected by a machine table.
var ErrIllegalTransition = errors.New("illegal state transition")

// TransitionError reports the exact rejected edge. It wraps
// ErrIllegalTransition so callers can match either the sentinel or the
// concrete type.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s transition %q -> %q not allowed", ErrIllegalTransition, e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// Machine is an immutable transition table over string-typed statuses.
// Construct once per entity at package init and share; Validate is pure.
type Machine[S ~string] struct {
	entity string
	edges  map[S][]S
}

func NewMachine[S ~string](entity string, edges map[S][]S) Machine[S] {
	copied := make(map[S][]S, len(edges))
	for from, successors := range edges {
		copied[from] = append([]S(nil), successors...)
	}
	return Machine[S]{entity: entity, edges: copied}
}

// Validate returns nil when from -> to is a listed edge, otherwise a
// *TransitionError. Self transitions are rejected unless listed.
func (m Machine[S]) Validate(from S, to S) error {
	for _, successor := range m.edges[from] {
		if successor == to {
			return nil
		}
	}
	return &TransitionError{Entity: m.entity, From: string(from), To: string(to)}
}

// CanTransition is Validate without the error allocation.
func (m Machine[S]) CanTransition(from S, to S) bool {
	for _, successor := range m.edges[from] {
		if successor == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a state has no outgoing edges.
func (m Machine[S]) Terminal(state S) bool {
	return len(m.edges[state]) == 0
}

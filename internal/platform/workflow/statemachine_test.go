package workflow

import (
	"errors"
	"testing"
)

type testStatus string

const (
	statusOpen   testStatus = "open"
	statusActive testStatus = "active"
	statusClosed testStatus = "closed"
)

func newTestMachine() Machine[testStatus] {
	return NewMachine("test", map[testStatus][]testStatus{
		statusOpen:   {statusActive, statusClosed},
		statusActive: {statusClosed},
	})
}

func TestValidateListedEdge(t *testing.T) {
	machine := newTestMachine()
	if err := machine.Validate(statusOpen, statusActive); err != nil {
		t.Fatalf("expected open -> active to be legal, got %v", err)
	}
}

func TestValidateRejectsUnlistedEdge(t *testing.T) {
	machine := newTestMachine()
	err := machine.Validate(statusClosed, statusOpen)
	if err == nil {
		t.Fatal("expected closed -> open to be rejected")
	}
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if transitionErr.From != "closed" || transitionErr.To != "open" {
		t.Fatalf("unexpected edge in error: %+v", transitionErr)
	}
}

func TestValidateRejectsSelfTransition(t *testing.T) {
	machine := newTestMachine()
	if err := machine.Validate(statusActive, statusActive); err == nil {
		t.Fatal("expected active -> active to be rejected")
	}
}

func TestTerminal(t *testing.T) {
	machine := newTestMachine()
	if machine.Terminal(statusOpen) {
		t.Fatal("open has successors and must not be terminal")
	}
	if !machine.Terminal(statusClosed) {
		t.Fatal("closed has no successors and must be terminal")
	}
}

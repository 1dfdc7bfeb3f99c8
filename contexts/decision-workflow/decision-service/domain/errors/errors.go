package errors

import "errors"

var (
	ErrInvalidDecisionInput = errors.New("invalid decision input")
	ErrDecisionNotFound     = errors.New("decision not found")
	ErrPersonNotFound       = errors.New("person not found")
	ErrHypothesisNotFound   = errors.New("hypothesis not found")
	ErrRationaleRequired    = errors.New("decision rationale is required")
	ErrReasonRequired       = errors.New("reason is required")
	ErrUnknownOption        = errors.New("selected option is not one of the declared options")
	ErrDecisionNotOpen      = errors.New("decision is not open for input")
	ErrDecisionConflict     = errors.New("decision was modified concurrently")
)

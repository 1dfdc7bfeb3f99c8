package errors

import "errors"

var (
	ErrInvalidHypothesisInput  = errors.New("invalid hypothesis input")
	ErrHypothesisNotFound      = errors.New("hypothesis not found")
	ErrBlockedReasonRequired   = errors.New("blocked reason is required")
	ErrInvalidConclusionTarget = errors.New("conclusion target must be validated or invalidated")
	ErrHypothesisConflict      = errors.New("hypothesis was modified concurrently")
)

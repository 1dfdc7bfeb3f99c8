package errors

import "errors"

var (
	ErrInvalidVoteInput  = errors.New("invalid vote input")
	ErrUnknownVoteOption = errors.New("unknown vote option")
	ErrDecisionNotFound  = errors.New("decision not found")
)

package errors

import "errors"

var (
	ErrInvalidStakeholderInput = errors.New("invalid stakeholder input")
	ErrStakeholderNotFound     = errors.New("stakeholder not found")
	ErrStakeholderExists       = errors.New("stakeholder already registered")
)

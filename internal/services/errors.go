package services

import "errors"

var (
	ErrAlreadyFasting    = errors.New("a fast is already in progress")
	ErrNotFasting        = errors.New("no fast in progress")
	ErrEndBeforeStart    = errors.New("fast cannot end before it started")
	ErrUnknownMedication = errors.New("unknown medication")
	ErrDoseIndex         = errors.New("dose index out of range")
	ErrInvalidInput      = errors.New("invalid input")
)

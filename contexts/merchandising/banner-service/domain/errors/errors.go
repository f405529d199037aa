package errors

import "errors"

var (
	ErrInvalidSlot     = errors.New("unknown banner slot")
	ErrInvalidPayload  = errors.New("invalid banner payload")
	ErrNotFound        = errors.New("banner record not found")
	ErrVersionConflict = errors.New("banner version conflict")
)

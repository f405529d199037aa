package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid upload request")
	ErrUploadRejected = errors.New("upload rejected")
	ErrMediaNotFound  = errors.New("media not found")
)

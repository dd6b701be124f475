package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrGenerationFailed = errors.New("generation failed")
	ErrUnknownStage     = errors.New("unknown generation stage")
	ErrMissingOwner     = errors.New("session id or user id required")
)

package entity

import "errors"

// Domain errors for word records and practice aggregates.
var (
	ErrWordRecordNotFound    = errors.New("word record not found")
	ErrDuplicateWordRecord   = errors.New("word record already exists")
	ErrInvalidWordText       = errors.New("invalid word text")
	ErrInvalidAnswerInput    = errors.New("invalid answer input")
	ErrInvalidSessionRequest = errors.New("invalid session request")
	ErrInvalidListQuery      = errors.New("invalid list query")
	ErrVersionConflict       = errors.New("word record version conflict")
)

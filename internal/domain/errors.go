package domain

import "errors"

var (
	// ErrSource marks a failed document fetch or parse.
	ErrSource = errors.New("source failure")
	// ErrBackend marks a failed or empty summarization call.
	ErrBackend = errors.New("backend failure")
	// ErrValidation marks request parameters outside the accepted contract.
	ErrValidation = errors.New("validation failure")

	ErrUnsupportedProvider = errors.New("unsupported provider")
)

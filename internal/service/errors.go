package service

import "errors"

var (
	// ErrSessionNotFound is returned when the session has no uploaded document.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyDocument is returned when an upload contains no usable text.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrInsufficientContent is returned when the document is too short to
	// build a quiz from, or when the model cannot produce one from it.
	ErrInsufficientContent = errors.New("document has insufficient content for a quiz")
)

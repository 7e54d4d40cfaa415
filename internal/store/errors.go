package store

import "errors"

// Sentinel errors for the store package.
var (
	ErrInvalidCard     = errors.New("store: question, answer and category are required")
	ErrInvalidCategory = errors.New("store: invalid category name")
	ErrNotFound        = errors.New("store: card not found")
)

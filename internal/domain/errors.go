package domain

import "errors"

var (
	// ErrDataAccess wraps any failure talking to the data store.
	ErrDataAccess = errors.New("data access failed")
	// ErrInvalidInput is returned for malformed identifiers or parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrModelAbsent means no trained artifact exists. Callers fall back.
	ErrModelAbsent = errors.New("model not available")
	// ErrInsufficientData aborts training when there is nothing to learn from.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrTraining marks an unexpected failure in the middle of training.
	ErrTraining = errors.New("training failed")

	ErrProductNotFound = errors.New("product not found")
)

package forecast

import "errors"

var (
	// ErrInsufficientHistory is returned when fewer than MinHistory readings
	// are supplied. The generator never pads missing hours with synthetic data.
	ErrInsufficientHistory = errors.New("insufficient history: at least 24 readings required")

	// ErrInvalidInput is returned for a non-positive horizon or malformed
	// reading timestamps.
	ErrInvalidInput = errors.New("invalid forecast input")
)

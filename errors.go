package regionarena

import "errors"

var (
	// ErrInvalidSize is returned when size is not positive.
	ErrInvalidSize = errors.New("regionarena: size must be positive")

	// ErrClosed is returned when an operation is attempted after Close.
	ErrClosed = errors.New("regionarena: arena is closed")

	// ErrOOM wraps an OS reservation failure (a region reserve or a bypass
	// allocation); a commit failure is tolerated and never returned. Use
	// errors.Is to distinguish it from budget.ErrHeapLimitExceeded, which
	// comes from a configured budget rather than the OS itself.
	ErrOOM = errors.New("regionarena: out of memory")
)

package core

import "errors"

var (
	// ErrDataUnavailable no trading data for a required date, or the provider could not supply it
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrDataIntegrity zero price division or a malformed deal row
	ErrDataIntegrity = errors.New("data integrity")

	// ErrSharesUnresolved every shares resolver came back empty
	ErrSharesUnresolved = errors.New("shares unresolved")

	// ErrDivisionByZero market cap resolved to zero
	ErrDivisionByZero = errors.New("division by zero")
)

package service

import "github.com/pkg/errors"

var (
	// ErrModeConflict — the account is in hedge (dual-side) position mode and
	// the operator declined remediation. Fatal: the engine refuses to trade
	// against a dual-sided account.
	ErrModeConflict = errors.New("account in hedge position mode, remediation declined")

	// ErrStuckPosition — a close order kept failing after bounded retries.
	// New entries stay suppressed until a reconciliation confirms FLAT.
	ErrStuckPosition = errors.New("close order retries exhausted, position stuck")
)

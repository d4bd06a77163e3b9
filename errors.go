package main

import (
	"context"
	"errors"
	"fmt"
)

// Workflow error taxonomy. Session-level errors abort the run with a
// browser diagnostic; the popup timeout is the only soft member.
var (
	ErrSessionUnavailable = errors.New("browser session unavailable")
	ErrSessionTimeout     = errors.New("browser operation timed out")
	ErrWindowNotFound     = errors.New("window handle no longer exists")
	ErrOrderIDNotFound    = errors.New("failed to locate ordr_idxx hidden input in reservation response")
	ErrTriggerNotFound    = errors.New("could not locate payment trigger on the reservation page")
	ErrPopupNotFound      = errors.New("failed to detect payment popup window")
)

// HTTPStatusError reports an in-session request whose status was missing
// or >= 400. The stage name makes the curl log searchable afterwards.
type HTTPStatusError struct {
	Step   string
	Status int
}

func (e *HTTPStatusError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s returned no HTTP status", e.Step)
	}
	return fmt.Sprintf("%s returned HTTP status %d", e.Step, e.Status)
}

// sessionError maps a rod/driver failure onto the taxonomy. Deadline
// expiry means the script outlived its budget; everything else means the
// session or driver is gone.
func sessionError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrSessionTimeout, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrSessionUnavailable, op, err)
}

func isBrowserError(err error) bool {
	return errors.Is(err, ErrSessionUnavailable) || errors.Is(err, ErrSessionTimeout)
}

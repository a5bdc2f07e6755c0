package engine

import "errors"

var (
	// ErrNoPendingTransition is returned when the job's history log is
	// empty or its latest entry names no next stage (terminal job).
	ErrNoPendingTransition = errors.New("no pending transition")
	// ErrMissingAttachment is returned when the target stage requires
	// evidence and none is staged. Purely local; no network call is made.
	ErrMissingAttachment = errors.New("at least one attachment is required")
	// ErrLocationUnavailable is returned when location access is denied or
	// the sensor produced no fix. Purely local; no network call is made.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrAlreadyInProgress is returned when a commit is already in flight
	// for the same job.
	ErrAlreadyInProgress = errors.New("commit already in progress")
	// ErrSyncFailed is returned on a transport or server failure during
	// submission or reconciliation. State is left as before the attempt so
	// the operator can simply retry.
	ErrSyncFailed = errors.New("status sync failed")
)

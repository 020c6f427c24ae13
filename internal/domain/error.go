package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every caller-visible failure wraps exactly one of these so the
// transport layer can map it to a status code with errors.Is.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrForbidden    = errors.New("operation not permitted for caller")
	ErrConflict     = errors.New("state conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrGateway      = errors.New("payment gateway error")
)

// Finer-grained sentinels, each carrying its kind.
var (
	ErrExplorerNotFound = fmt.Errorf("%w: explorer", ErrNotFound)
	ErrTripNotFound     = fmt.Errorf("%w: trip", ErrNotFound)
	ErrMatchNotFound    = fmt.Errorf("%w: match", ErrNotFound)
	ErrPaymentNotFound  = fmt.Errorf("%w: payment", ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("%w: review", ErrNotFound)

	ErrOwnTrip        = fmt.Errorf("%w: cannot request a connection on your own trip", ErrForbidden)
	ErrNotParticipant = fmt.Errorf("%w: caller is not a participant of this match", ErrForbidden)
	ErrNotReviewOwner = fmt.Errorf("%w: caller does not own this review", ErrForbidden)

	ErrTripLocked        = fmt.Errorf("%w: trip is closed for new connection requests", ErrConflict)
	ErrDuplicateMatch    = fmt.Errorf("%w: a match already exists for this trip and pair", ErrConflict)
	ErrTerminalState     = fmt.Errorf("%w: no transition out of a terminal state", ErrConflict)
	ErrMatchLimitReached = fmt.Errorf("%w: connection limit for current plan reached", ErrConflict)
	ErrNoAcceptedMatches = fmt.Errorf("%w: trip has no accepted matches", ErrConflict)
	ErrTripNotCompleted  = fmt.Errorf("%w: owning trip has not completed", ErrConflict)
	ErrMatchNotCompleted = fmt.Errorf("%w: match has not completed", ErrConflict)
	ErrAlreadyReviewed   = fmt.Errorf("%w: match already reviewed by this explorer", ErrConflict)
	ErrAlreadyProcessed  = fmt.Errorf("%w: payment already reached a terminal status", ErrConflict)

	ErrUnknownPlan      = fmt.Errorf("%w: unknown plan", ErrInvalidInput)
	ErrPlanNotPayable   = fmt.Errorf("%w: plan has no price", ErrInvalidInput)
	ErrAmountMismatch   = fmt.Errorf("%w: amount does not match the plan price", ErrInvalidInput)
	ErrMissingReference = fmt.Errorf("%w: missing transaction reference", ErrInvalidInput)
	ErrInvalidArgument  = fmt.Errorf("%w: invalid argument", ErrInvalidInput)
)

// Infra-internal failures. These never reach callers with detail; the web
// layer reports them as a generic server error.
var (
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid query execution context")
)

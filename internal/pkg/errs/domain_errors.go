package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Lot errors
	ErrLotNotFound     = errors.New("lot not found")
	ErrLotNotAvailable = errors.New("lot not available for caller affiliation")
	ErrLotRetired      = errors.New("lot has been delivered and retired")

	// Reservation errors
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrAlreadyReserved        = errors.New("lot already has an active reservation")
	ErrInvalidStateTransition = errors.New("invalid reservation state transition")

	// Authorization errors
	ErrNotAuthorized = errors.New("caller is not authorized for this operation")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)

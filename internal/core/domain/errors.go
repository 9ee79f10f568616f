package domain

import "errors"

var (
	ErrMissingCredential  = errors.New("missing credential")
	ErrRoleMismatch       = errors.New("role mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authorization rejected by backend")
	ErrNetworkFailure     = errors.New("backend request failed")
	ErrOrderNotFound      = errors.New("order not found")
	ErrDecode             = errors.New("token decode failed")
	ErrEmptyPolicy        = errors.New("access policy requires at least one role")
)

// ErrValidation is the parent of every locally recovered validation failure.
var ErrValidation = errors.New("validation failed")

var (
	ErrNoRecipient       = validationError("a recipient must be selected")
	ErrNoServiceSelected = validationError("at least one service must be selected")
	ErrBudgetExceeded    = validationError("budget exceeded")
	ErrUnknownService    = validationError("unknown service")
	ErrInvalidQuantity   = validationError("quantity must be between 0 and 999")
	ErrInvalidRating     = validationError("rating must be between 1 and 5")
	ErrInvalidTransition = validationError("invalid status transition")
	ErrNotRateable       = validationError("only completed orders can be rated")
)

type validationErr struct{ msg string }

func validationError(msg string) error { return &validationErr{msg: msg} }

func (e *validationErr) Error() string { return e.msg }

func (e *validationErr) Unwrap() error { return ErrValidation }

// ErrDuplicateSubmission is returned when an Idempotency-Key was already used.
var ErrDuplicateSubmission = errors.New("order already submitted")

// LoginRejectedError carries the backend's human-readable reason for a
// failed login. It matches ErrInvalidCredentials.
type LoginRejectedError struct {
	Message string
}

func (e *LoginRejectedError) Error() string {
	if e.Message == "" {
		return ErrInvalidCredentials.Error()
	}
	return e.Message
}

func (e *LoginRejectedError) Unwrap() error { return ErrInvalidCredentials }

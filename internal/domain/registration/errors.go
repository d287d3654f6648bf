package registration

import "errors"

// Error taxonomy surfaced to the HTTP layer. Handlers map these to status
// codes; everything else is treated as a transient store failure.
var (
	// ErrInvalidRequest wraps field-level validation failures
	ErrInvalidRequest         = errors.New("invalid signup request")
	ErrCommunityNotFound      = errors.New("community not found")
	ErrCommunityFull          = errors.New("community is full")
	ErrCountryUnavailable     = errors.New("country is no longer available")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrPersonNotFound         = errors.New("person not found")
	// ErrVerificationEmailFailed means the account exists but the
	// verification email could not be sent; the delegate can request a
	// re-send.
	ErrVerificationEmailFailed = errors.New("failed to send verification email")
)

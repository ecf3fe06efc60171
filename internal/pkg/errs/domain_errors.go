package errs

// Outcome classes reported to callers. Specific errors are marked with one of
// these so the transport layer can branch on the class.
var (
	ErrUnauthorized      = New("unauthorized")
	ErrForbidden         = New("forbidden")
	ErrNotFound          = New("not found")
	ErrInvalidInput      = New("invalid input")
	ErrInvalidTransition = New("invalid state transition")
	ErrNotEligible       = New("not eligible")
	ErrDuplicateReview   = New("duplicate review")

	// Credential rotation outcomes
	ErrInvalidOrExpired = New("code invalid or expired")
	ErrTooManyAttempts  = New("too many attempts")
	ErrIncorrectCode    = New("incorrect code")

	// Storage or transport errors not otherwise classified
	ErrDependencyFailure = New("dependency failure")
)

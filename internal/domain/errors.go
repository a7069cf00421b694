package domain

import "errors"

// Kind groups errors by how callers are expected to react to them.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindValidation covers bad user input; nothing was mutated.
	KindValidation
	// KindAuth covers unknown accounts, wrong secrets and forbidden role actions.
	KindAuth
	// KindSession covers operations on a quiz session in the wrong state.
	KindSession
	// KindNotFound covers missing categories and similar lookups.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindSession:
		return "session"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a classified, user-presentable error.
type Error struct {
	Kind Kind
	msg  string
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// KindOf reports the kind of the first domain error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

var (
	ErrMissingFields           = newError(KindValidation, "please fill all fields")
	ErrDuplicateUsername       = newError(KindValidation, "username already exists")
	ErrPasswordMismatch        = newError(KindValidation, "passwords do not match")
	ErrPasswordTooShort        = newError(KindValidation, "password must be at least 6 characters long")
	ErrInvalidSecurityQuestion = newError(KindValidation, "unknown security question")
	ErrInvalidChoice           = newError(KindValidation, "choice is out of range")
	ErrInvalidRole             = newError(KindValidation, "role must be user or admin")
	ErrInvalidDifficulty       = newError(KindValidation, "difficulty must be Easy, Medium or Hard")

	ErrUserNotFound          = newError(KindAuth, "username not found")
	ErrWrongPassword         = newError(KindAuth, "incorrect password")
	ErrRecoveryNotConfigured = newError(KindAuth, "password recovery is not set up for this account")
	ErrWrongAnswer           = newError(KindAuth, "incorrect answer")
	ErrForbidden             = newError(KindAuth, "you are not allowed to do that")
	ErrSelfModification      = newError(KindAuth, "you cannot change your own role")
	ErrNotLoggedIn           = newError(KindAuth, "please log in first")
	ErrRecoveryNotVerified   = newError(KindAuth, "answer the security question first")

	ErrNoActiveSession    = newError(KindSession, "no quiz in progress")
	ErrSessionNotFinished = newError(KindSession, "quiz is still in progress")

	ErrCategoryNotFound = newError(KindNotFound, "category not found")
	ErrEmptyCategory    = newError(KindNotFound, "no questions available in this category")
)

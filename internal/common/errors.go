// Package common defines shared constants and sentinel errors used across
// gophfeed layers. Callers should use errors.Is to match these values:
// specific errors wrap one of the taxonomy kinds below, so transports only
// need to know the kinds.
package common

import (
	"errors"
	"fmt"
)

var (
	// Taxonomy kinds.
	ErrorUnauthorized = errors.New("unauthenticated")
	ErrorForbidden    = errors.New("forbidden")
	ErrorNotFound     = errors.New("not found")
	ErrorConflict     = errors.New("conflict")
	ErrorInvalid      = errors.New("invalid input")
	ErrorInternal     = errors.New("internal error")

	// Token errors. Expired is a flavour of invalid.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)

	// Gate rejections.
	ErrTokenMissing   = fmt.Errorf("%w: missing", ErrorUnauthorized)
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrorUnauthorized)
	ErrTokenRejected  = fmt.Errorf("%w: invalid", ErrorUnauthorized)

	// Login failure; wrong email and wrong password look the same.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrorUnauthorized)

	ErrDuplicateEmail = fmt.Errorf("%w: DuplicateEmail", ErrorConflict)
	ErrAlreadyLiked   = fmt.Errorf("%w: AlreadyLiked", ErrorConflict)
	ErrNotLiked       = fmt.Errorf("%w: NotLiked", ErrorNotFound)
)

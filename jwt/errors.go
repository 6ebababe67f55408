package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// FailureKind classifies why a token could not be decoded.
type FailureKind int

const (
	KindMalformed FailureKind = iota + 1
	KindSignatureInvalid
	KindExpired
	KindUnsupportedFormat
)

func (k FailureKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindExpired:
		return "expired"
	case KindUnsupportedFormat:
		return "unsupported_format"
	default:
		return "unknown"
	}
}

var (
	// ErrMalformed matches decode failures caused by token structure or claims.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid matches decode failures caused by a bad signature.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired matches decode failures caused by an elapsed expiry.
	ErrExpired = errors.New("token expired")
	// ErrUnsupportedFormat matches tokens signed with an algorithm other than HS512.
	ErrUnsupportedFormat = errors.New("token format unsupported")
)

// DecodeError is the only error type returned by the decode functions.
type DecodeError struct {
	Kind FailureKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "jwt: " + e.Kind.String()
	}
	return "jwt: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is match a DecodeError against the package sentinels.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrSignatureInvalid:
		return e.Kind == KindSignatureInvalid
	case ErrExpired:
		return e.Kind == KindExpired
	case ErrUnsupportedFormat:
		return e.Kind == KindUnsupportedFormat
	}
	return false
}

// KindOf reports the FailureKind carried by err, or zero when err is not a
// DecodeError.
func KindOf(err error) FailureKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// classify maps parser errors onto a FailureKind. Order matters: the parser
// verifies the signature before claims, so an expiry error implies a good
// signature.
func classify(err error) *DecodeError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &DecodeError{Kind: KindMalformed, Err: err}
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return &DecodeError{Kind: KindUnsupportedFormat, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &DecodeError{Kind: KindSignatureInvalid, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &DecodeError{Kind: KindExpired, Err: err}
	default:
		return &DecodeError{Kind: KindMalformed, Err: err}
	}
}

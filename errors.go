package session

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to callers alongside structured errors.
const (
	TextCodeMissingCredentials = "MISSING_CREDENTIALS"
	TextCodeMissingFields      = "MISSING_SIGNUP_FIELDS"
	TextCodeNoToken            = "NO_TOKEN_RETURNED"
	TextCodeExpiredOnArrival   = "TOKEN_EXPIRED_ON_ARRIVAL"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeTransportFailure   = "AUTH_TRANSPORT_FAILURE"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeClaimsDecodeError  = "CLAIMS_DECODE_ERROR"
	TextCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	TextCodeMemberBlocked      = "MEMBER_BLOCKED"
	TextCodeMemberInactive     = "MEMBER_INACTIVE"
)

// ErrMissingCredentials is returned before any network call when the login
// identifier or password is empty.
var ErrMissingCredentials = goerrors.New("identifier and password are required", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingSignupFields is returned before any network call when a signup
// field is empty.
var ErrMissingSignupFields = goerrors.New("all signup fields are required", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingFields).
	WithCode(goerrors.CodeBadRequest)

// ErrNoToken signals that the auth endpoint answered without an access
// token, which violates its contract.
var ErrNoToken = goerrors.New("authentication succeeded but no access token was returned", goerrors.CategoryOperation).
	WithTextCode(TextCodeNoToken)

// ErrTokenExpiredOnArrival is a defensive check: a freshly issued token must
// not already be expired.
var ErrTokenExpiredOnArrival = goerrors.New("received an already expired access token", goerrors.CategoryAuth).
	WithTextCode(TextCodeExpiredOnArrival).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is the user-facing error for rejected credentials.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrTransportFailure is the catch-all for network and server failures that
// are not a credentials rejection.
var ErrTransportFailure = goerrors.New("could not reach the authentication service", goerrors.CategoryOperation).
	WithTextCode(TextCodeTransportFailure)

// ErrTokenExpired is returned by validators for expired tokens.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned by validators for tokens that cannot be
// parsed.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeClaims signals a token whose payload does not decode into
// member claims.
var ErrUnableToDecodeClaims = goerrors.New("unable to decode session claims", goerrors.CategoryAuth).
	WithTextCode(TextCodeClaimsDecodeError).
	WithCode(goerrors.CodeUnauthorized)

// ErrStorageUnavailable wraps backend failures that prevent token
// persistence.
var ErrStorageUnavailable = goerrors.New("session storage is unavailable", goerrors.CategoryInternal).
	WithTextCode(TextCodeStorageUnavailable)

// ErrMemberBlocked rejects sessions for blocked accounts.
var ErrMemberBlocked = goerrors.New("member account is blocked", goerrors.CategoryAuth).
	WithTextCode(TextCodeMemberBlocked).
	WithCode(goerrors.CodeForbidden)

// ErrMemberInactive rejects sessions for deactivated accounts.
var ErrMemberInactive = goerrors.New("member account is inactive", goerrors.CategoryAuth).
	WithTextCode(TextCodeMemberInactive).
	WithCode(goerrors.CodeForbidden)

// IsTokenExpiredError will check for expired tokens, including legacy
// string-matched errors coming out of the jwt library.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) || hasTextCode(err, TextCodeExpiredOnArrival) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed token errors.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) || hasTextCode(err, TextCodeClaimsDecodeError) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsInvalidCredentialsError reports whether err represents a credentials
// rejection, either structured or signaled by the backend's error message.
func IsInvalidCredentialsError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeInvalidCreds) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "please enter valid credentials") ||
		strings.Contains(msg, "invalid credentials") ||
		strings.Contains(msg, "unauthorized")
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

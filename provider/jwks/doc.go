// Package jwks provides a session.TokenValidator backed by a remote JSON
// Web Key Set. Unlike the package-level inspector, which decodes tokens
// without verification, this validator checks signatures against the keys
// published by the auth service and refreshes them in the background.
package jwks

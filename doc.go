// Package session implements the client-side authentication lifecycle for
// Eventify front-ends: durable bearer-token storage, token decoding and
// expiry checks, a reactive "current member" slot, and the login/signup/
// logout flows that talk to the platform's GraphQL auth endpoint.
//
// Token lifecycle:
//   - TokenStore persists the raw bearer token through a pluggable
//     StorageBackend (memory, sqlite via Bun, Redis, or an encrypting
//     wrapper) and records advisory login/logout markers so sibling
//     processes can notice session changes.
//   - TokenInspector decodes claims without verifying signatures (the
//     backend owns the signing key); provider/jwks offers a verifying
//     TokenValidator for deployments that publish a JWK Set.
//
// Session propagation:
//   - SessionHub holds the normalized Account projection of the most
//     recently validated claims. UI layers read Current and subscribe with
//     OnChange; Publish and Clear are driven by the Manager so the stored
//     token and the published session never disagree.
//
// Flows:
//   - Manager orchestrates Login, Signup, Logout, and RestoreSession. Every
//     flow leaves TokenStore and SessionHub mutually consistent: a failed
//     commit clears both, a successful one populates both from the same
//     token.
package session

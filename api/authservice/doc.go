// Package authservice implements the client side of the presentation service,
// which exchanges a Verifiable Credential for a single-use authorization token.
//
// The client wraps the credential in a fresh presentation on every call and
// never caches the returned token. The API key is resolved from an
// interfaces.SecretSource per request so that rotated keys are picked up
// without restarting the process.
package authservice

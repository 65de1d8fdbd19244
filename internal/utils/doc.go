// Package utils provides general-purpose helpers used across the client:
// bearer and JWT parsing, identifier generation, the resty client wrapper and
// the exponential backoff formula shared by the room channel and the
// presence mesh.
package utils

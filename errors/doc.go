// Package errors provides the structured error type shared by httpkit packages.
// Every failure raised before a request reaches the wire (bad configuration,
// malformed requests, unparsable URLs) is an *AppError carrying a machine-readable
// code, so callers can branch with HasCode instead of matching strings.
package errors

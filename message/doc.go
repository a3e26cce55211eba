// Package message holds the Request and Response values exchanged with
// transports.
//
// Headers are kept as ordered "Name: Value" lines exactly as they were added.
// Duplicate names stay as separate lines; interpreting them is left to the
// wire protocol.
package message

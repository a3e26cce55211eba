// Package transport defines the contracts shared by httpkit transports.
//
// A Transport performs the network I/O for one request. Two variants exist,
// selected by Kind rather than by name lookup:
//
//   - KindStream: raw connections driven by options from the stream context
//     builder (package transport/stream)
//   - KindNative: net/http (package transport/native)
//
// Both read the same client-level Settings and classify failures with *Error.
package transport

// Package security provides shared security primitives for httpkit clients and transports.
//
// TLSConfig is loaded from client configuration and narrowed per connection
// with ForPeer, which applies the request's peer verification setting.
//
// # TLS Configuration
//
//	cfg := security.TLSConfig{
//	    CAFile:   "/path/to/ca.pem",
//	    CertFile: "/path/to/cert.pem",
//	    KeyFile:  "/path/to/key.pem",
//	}
//
//	tlsConfig, err := cfg.Build()
package security

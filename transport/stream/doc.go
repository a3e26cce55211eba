// Package stream implements the stream transport and the context builder that
// feeds it.
//
// ContextBuilder maps a request and client settings to Options: the complete,
// per-request description of what the transport writes on the wire. Building
// is pure; it performs no I/O and never mutates its inputs, so one builder can
// serve concurrent sends.
//
//	opts, err := stream.NewContextBuilder().Build(req, settings)
//	// opts.HTTP.Proxy == "tcp://proxy.example:3128"
//	// opts.HTTP.Header ends with "Proxy-Authorization: Basic ..."
//
// Transport consumes Options: it dials the target or the proxy (tcp, ssl or
// socks5), tunnels https through CONNECT, writes the request and reads the
// response, following redirects up to the configured limit.
//
// # Proxy authentication
//
// Proxy credentials never appear in the proxy connection string. With the
// default ProxyAuthHeader mode they travel as a Proxy-Authorization header,
// and a proxy without credentials gets RequestFullURI instead. ProxyAuthFullURI
// always requests absolute-form targets and still adds the header when
// credentials exist.
package stream

// Package native implements transport.Transport on top of net/http.
//
// It takes the same settings as the stream transport but lets http.Transport
// handle proxies, CONNECT tunnels and connection reuse. Proxy credentials
// are taken from the proxy URL's userinfo. Requests always go out as
// HTTP/1.1 or HTTP/2 as negotiated; the request's protocol version is not
// honoured.
package native

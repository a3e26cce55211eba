package stream

// Options is everything the stream transport needs to send one request.
// It is produced fresh by ContextBuilder.Build and owned by the caller.
type Options struct {
	HTTP HTTPOptions `json:"http" yaml:"http"`
	TLS  TLSOptions  `json:"ssl" yaml:"ssl"`
}

// HTTPOptions describes the request and how to route it.
type HTTPOptions struct {
	Method string `json:"method" yaml:"method"`
	// Header is the CRLF-joined header block, without a trailing CRLF.
	Header          string  `json:"header" yaml:"header"`
	Content         []byte  `json:"content" yaml:"-"`
	ProtocolVersion string  `json:"protocol_version" yaml:"protocol_version"`
	IgnoreErrors    bool    `json:"ignore_errors" yaml:"ignore_errors"`
	MaxRedirects    int     `json:"max_redirects" yaml:"max_redirects"`
	Timeout         float64 `json:"timeout" yaml:"timeout"`
	// Proxy is "tcp://host:port", "ssl://host:port" or an unmapped scheme.
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	// RequestFullURI asks for an absolute-form request target. The stream
	// transport sends absolute-form to any HTTP forward proxy regardless.
	RequestFullURI bool `json:"request_fulluri,omitempty" yaml:"request_fulluri,omitempty"`
}

// TLSOptions holds TLS settings for https targets and ssl proxies.
type TLSOptions struct {
	VerifyPeer bool `json:"verify_peer" yaml:"verify_peer"`
}

// HeaderLines splits the header block back into lines.
func (o *HTTPOptions) HeaderLines() []string {
	return splitHeaderBlock(o.Header)
}

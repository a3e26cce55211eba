// Package version reports the httpkit build version. The CLI prints it and
// sends it as the default User-Agent.
//
// Values are set at build time:
//
//	go build -ldflags "-X github.com/kbukum/httpkit/version.Version=1.0.0" ./cmd/httpkit
package version

// Package testutil provides the HTTP fixtures httpkit's transport and client
// tests run against.
//
// EchoServer is a gin-based origin that records requests and echoes them
// back as JSON, with routes for status codes, redirect chains and slow
// responses. ForwardProxy is an HTTP proxy that records what it receives,
// forwards absolute-form requests, tunnels CONNECT and enforces Basic proxy
// credentials.
//
// Both are TestComponents: they start and stop like any component and can
// Reset, Snapshot and Restore their recorded requests.
//
//	func TestThroughProxy(t *testing.T) {
//	    m := testutil.NewManager(t)
//	    srv := m.Add(testutil.NewEchoServer("echo")).(*testutil.EchoServer)
//	    proxy := m.Add(testutil.NewForwardProxy("proxy").WithCredentials("alice", "secret")).(*testutil.ForwardProxy)
//	    m.StartAll()
//	    ...
//	}
package testutil

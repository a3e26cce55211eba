// Package component manages things with a start/stop lifecycle.
//
// A Registry starts components in registration order and stops them in
// reverse. The httpkit CLI registers its observability providers and HTTP
// client there, and tests register echo servers and forward proxies.
//
//	reg := component.NewRegistry()
//	_ = reg.Register(httpclient.NewComponent(cfg))
//	if err := reg.StartAll(ctx); err != nil {
//	    return err
//	}
//	defer reg.StopAll(context.Background())
//
// Lazy defers building an expensive value until first use.
package component

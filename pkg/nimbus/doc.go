// Package nimbus is a client for the Nimbus push delivery platform's HTTP
// API. It covers request construction and dispatch: building a request,
// authenticating it with basic credentials, a static bearer token or an
// OAuth token source, executing it with a bounded timeout, and normalizing
// the response.
//
// Create a client with basic credentials:
//
//	client, err := nimbus.NewClient(nimbus.Config{Key: appKey, Secret: appSecret})
//
// or with an OAuth token source:
//
//	client, err := nimbus.NewClient(nimbus.Config{
//	    Key: appKey,
//	    TokenSource: &nimbus.AssertionTokenSource{ClientID: id, AppKey: appKey, PrivateKey: key},
//	})
//
// The audience, push, devices and reports subpackages build payloads and
// wrap individual endpoints on top of Client.Send. Failed requests surface
// as typed errors; use errors.Is with ErrValidation, ErrConfiguration and
// ErrTransport, or errors.As with StatusError to inspect a non-2xx response.
//
// The client performs exactly one attempt per call. Retrying is left to the
// caller; transport errors and 5xx status errors are the retryable ones.
package nimbus

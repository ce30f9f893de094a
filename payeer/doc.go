// Package payeer implements a client for the Payeer wallet HTTP API.
//
// A Client is configured with the static credential triple issued when API
// access is enabled on a wallet, and exposes one method per API action plus
// the generic [Client.Request] primitive. Methods suspend only at network I/O
// and are safe to call concurrently; every call builds its own parameter set
// and performs exactly one round trip. The client imposes no timeout of its
// own; bound calls with a context deadline.
//
// Failures reported by the API arrive as *[APIError] carrying the raw errors
// payload verbatim. A recipient identifier rejected before submission is
// *[InvalidAccountError]. Anything else (DNS failures, refused connections,
// non-JSON bodies) is a wrapped transport error, distinct from both.
package payeer

// Package http implements an HTTP-based transport layer for devlock RPC
// communication. Every request is a POST to /devices/{device} whose body is a
// serialized message.
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. It spreads requests
//     round-robin across the configured endpoints and retries failed requests.
//
//   - httpServerTransport: Implements IRPCServerTransport. It routes incoming
//     requests to the registered handler and shuts down gracefully when its
//     context is cancelled. With log level debug every request is logged.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	an atomic counter for the round-robin endpoint selection.
package http

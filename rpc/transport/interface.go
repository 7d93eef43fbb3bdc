package transport

import (
	"context"

	"github.com/ValentinKolb/devlock/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes the request context, the addressed device and the raw request and
// returns the raw response. ctx is done when the caller goes away.
type ServerHandleFunc func(ctx context.Context, device string, req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer
// It must accept a ServerConfig as a parameter
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and blocks until ctx is done or the
	// listener fails. A cancelled ctx shuts the transport down gracefully and
	// is not reported as an error.
	Listen(ctx context.Context, config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request for device to the server and returns the response
	Send(device string, req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}

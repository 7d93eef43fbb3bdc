package server

import (
	"context"

	"github.com/ValentinKolb/devlock/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a request addressed to device and returns a response.
	// ctx is cancelled when the request times out or the server shuts down.
	// If an error occurs, it should be set in the response
	Handle(ctx context.Context, device string, req *common.Message) (resp *common.Message)
}

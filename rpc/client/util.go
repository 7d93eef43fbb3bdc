package client

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/devlock/rpc/common"
	"github.com/ValentinKolb/devlock/rpc/serializer"
	"github.com/ValentinKolb/devlock/rpc/transport"
)

// invokeRPCRequest is a helper function used by the RPC client to send requests
// It takes a device, a request message, a transport layer and a serializer as parameters
// It returns the response message and an error if the request could not be handled at all.
// Errors of the operation itself (e.g. a failed reset) are left in resp.Err.
func invokeRPCRequest(device string, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := transport.Send(device, reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("RPC Client - Error: %w", err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError {
		return nil, fmt.Errorf("RPC Client - Error: %s", resp.Err)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC Client - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}

// responseError converts the error string of a response back into an error
func responseError(resp *common.Message) error {
	if resp.Err == "" {
		return nil
	}
	return errors.New(resp.Err)
}

package client

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/devlock/rpc/common"
	"github.com/ValentinKolb/devlock/rpc/serializer"
	"github.com/ValentinKolb/devlock/rpc/transport"
)

// IDeviceClient triggers resets on a remote devlock server
type IDeviceClient interface {
	// Reset resets the device with priority and returns the reset result line.
	// A reset that ran but reported NO OK returns the result and an error.
	Reset(device string) (result string, err error)
	// TryReset resets the device with normal access if its lock can be taken
	// within wait. An empty result means the reset did not run.
	TryReset(device string, wait time.Duration) (result string, err error)
	// Status returns the lock state of the device
	Status(device string) (DeviceStatus, error)
	// Close closes the underlying transport
	Close() error
}

// DeviceStatus is the lock state of a device as reported by the server
type DeviceStatus struct {
	Device string
	// Tracked is false if the server holds no lock record for the device
	Tracked         bool
	Held            bool
	ResetInProgress bool
	Waiters         int
}

// String renders the status for the command line
func (s DeviceStatus) String() string {
	if !s.Tracked {
		return fmt.Sprintf("%s: idle", s.Device)
	}
	return fmt.Sprintf("%s: held=%t reset=%t waiters=%d", s.Device, s.Held, s.ResetInProgress, s.Waiters)
}

// NewRPCDeviceClient creates a new RPC device client
// The function takes a config, a transport and a serializer as parameters
func NewRPCDeviceClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (IDeviceClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcDeviceClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

type rpcDeviceClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see client.IDeviceClient)
// --------------------------------------------------------------------------

func (c *rpcDeviceClient) Reset(device string) (string, error) {
	resp, err := invokeRPCRequest(device, common.NewResetRequest(device), c.transport, c.serializer)
	if err != nil {
		return "", err
	}
	return resp.Result, responseError(resp)
}

func (c *rpcDeviceClient) TryReset(device string, wait time.Duration) (string, error) {
	req := common.NewTryResetRequest(device, uint64(wait.Milliseconds()))
	resp, err := invokeRPCRequest(device, req, c.transport, c.serializer)
	if err != nil {
		return "", err
	}
	return resp.Result, responseError(resp)
}

func (c *rpcDeviceClient) Status(device string) (DeviceStatus, error) {
	resp, err := invokeRPCRequest(device, common.NewStatusRequest(device), c.transport, c.serializer)
	if err != nil {
		return DeviceStatus{}, err
	}
	return DeviceStatus{
		Device:          device,
		Tracked:         resp.Ok,
		Held:            resp.Held,
		ResetInProgress: resp.Reset,
		Waiters:         int(resp.Waiters),
	}, nil
}

func (c *rpcDeviceClient) Close() error {
	return c.transport.Close()
}

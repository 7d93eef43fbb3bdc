package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/devlock/lib/device"
	"github.com/ValentinKolb/devlock/lib/lockmgr"
	"github.com/ValentinKolb/devlock/rpc/common"
	"golang.org/x/time/rate"
)

// NewDeviceServerAdapter creates the adapter serving reset and status requests.
// limiter restricts priority resets, a nil limiter admits every request.
func NewDeviceServerAdapter(
	registry lockmgr.IPriorityLockRegistry,
	coordinator *device.Coordinator,
	limiter *rate.Limiter,
) IRPCServerAdapter {
	return &deviceServerAdapter{
		registry:    registry,
		coordinator: coordinator,
		limiter:     limiter,
	}
}

type deviceServerAdapter struct {
	registry    lockmgr.IPriorityLockRegistry
	coordinator *device.Coordinator
	limiter     *rate.Limiter
}

func (adapter *deviceServerAdapter) Handle(ctx context.Context, name string, req *common.Message) *common.Message {
	if req.Device != "" && req.Device != name {
		return common.NewErrorResponse(fmt.Sprintf("device mismatch: request for %s sent to %s", req.Device, name))
	}

	switch req.MsgType {
	case common.MsgTRSTPriority:
		if adapter.limiter != nil && !adapter.limiter.Allow() {
			return common.NewErrorResponse("priority reset rejected: rate limit exceeded")
		}
		Logger.Infof("priority reset requested for device %s", name)
		res, err := adapter.coordinator.ResetWithPriority(ctx, name)
		return common.NewResetResponse(res.String(), err)

	case common.MsgTRSTTimed:
		timeout := time.Duration(req.Timeout) * time.Millisecond
		res, err := adapter.coordinator.TryReset(ctx, name, timeout)
		if errors.Is(err, device.ErrLockNotAcquired) {
			return common.NewTryResetResponse("", err)
		}
		return common.NewTryResetResponse(res.String(), err)

	case common.MsgTLCKStatus:
		status, found := adapter.registry.Status(name)
		resp := common.NewStatusResponse(status, found)
		resp.Device = name
		return resp

	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC DeviceAdapter - Unsupported message type: %s", req.MsgType))
	}
}

package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/devlock/lib/lockmgr"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Device  string `json:"device,omitempty"`  // Used for: Reset, TryReset, Status
	Timeout uint64 `json:"timeout,omitempty"` // Used for: TryReset (lock timeout in milliseconds)

	// Response only fields
	Result  string `json:"result,omitempty"`  // Used for: Reset, TryReset responses
	Ok      bool   `json:"ok,omitempty"`      // Used for: Reset, TryReset, Status responses
	Held    bool   `json:"held,omitempty"`    // Used for: Status responses
	Reset   bool   `json:"reset,omitempty"`   // Used for: Status responses
	Waiters uint64 `json:"waiters,omitempty"` // Used for: Status responses
	Err     string `json:"err,omitempty"`     // Empty if no error, otherwise contains the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewResetRequest creates a new priority Reset request
func NewResetRequest(device string) *Message {
	return &Message{
		MsgType: MsgTRSTPriority,
		Device:  device,
	}
}

// NewResetResponse creates a new priority Reset response
func NewResetResponse(result string, err error) *Message {
	msg := &Message{
		MsgType: MsgTRSTPriority,
		Result:  result,
		Ok:      err == nil,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewTryResetRequest creates a new TryReset request.
// timeoutMs is the time the server waits for the device lock.
func NewTryResetRequest(device string, timeoutMs uint64) *Message {
	return &Message{
		MsgType: MsgTRSTTimed,
		Device:  device,
		Timeout: timeoutMs,
	}
}

// NewTryResetResponse creates a new TryReset response
func NewTryResetResponse(result string, err error) *Message {
	msg := &Message{
		MsgType: MsgTRSTTimed,
		Result:  result,
		Ok:      err == nil,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewStatusRequest creates a new Status request
func NewStatusRequest(device string) *Message {
	return &Message{
		MsgType: MsgTLCKStatus,
		Device:  device,
	}
}

// NewStatusResponse creates a new Status response from a lock record snapshot.
// found reports whether the device has a lock record at all.
func NewStatusResponse(status lockmgr.LockStatus, found bool) *Message {
	return &Message{
		MsgType: MsgTLCKStatus,
		Ok:      found,
		Held:    status.Held(),
		Reset:   status.ResetInProgress,
		Waiters: uint64(status.Waiters),
	}
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTRSTPriority:
		return "reset"
	case MsgTRSTTimed:
		return "tryReset"
	case MsgTLCKStatus:
		return "status"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "reset":
		*t = MsgTRSTPriority
	case "tryReset":
		*t = MsgTRSTTimed
	case "status":
		*t = MsgTLCKStatus
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Reset operations

	MsgTRSTPriority // Reset a device with priority
	MsgTRSTTimed    // Reset a device if its lock can be acquired in time

	// Lock operations

	MsgTLCKStatus // Inspect the lock record of a device
)

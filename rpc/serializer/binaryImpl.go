package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/devlock/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
//
// Layout: MsgType (1 byte) | flags (1 byte) | present fields in flag order.
// Strings are prefixed with their length as uint32, numbers are uint64.
// Booleans are stored in the flags byte only.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasDevice  byte = 1 << 0
	hasTimeout byte = 1 << 1
	hasResult  byte = 1 << 2
	hasWaiters byte = 1 << 3
	hasErr     byte = 1 << 4
	isOk       byte = 1 << 5
	isHeld     byte = 1 << 6
	isReset    byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, 2, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags byte
	if msg.Device != "" {
		flags |= hasDevice
		result = appendString(result, msg.Device)
	}
	if msg.Timeout > 0 {
		flags |= hasTimeout
		result = binary.BigEndian.AppendUint64(result, msg.Timeout)
	}
	if msg.Result != "" {
		flags |= hasResult
		result = appendString(result, msg.Result)
	}
	if msg.Waiters > 0 {
		flags |= hasWaiters
		result = binary.BigEndian.AppendUint64(result, msg.Waiters)
	}
	if msg.Err != "" {
		flags |= hasErr
		result = appendString(result, msg.Err)
	}
	if msg.Ok {
		flags |= isOk
	}
	if msg.Held {
		flags |= isHeld
	}
	if msg.Reset {
		flags |= isReset
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	r := reader{data: data, pos: 2}

	*msg = common.Message{
		MsgType: msg.MsgType,
		Ok:      flags&isOk != 0,
		Held:    flags&isHeld != 0,
		Reset:   flags&isReset != 0,
	}

	var err error
	if flags&hasDevice != 0 {
		if msg.Device, err = r.readString("device"); err != nil {
			return err
		}
	}
	if flags&hasTimeout != 0 {
		if msg.Timeout, err = r.readUint64("timeout"); err != nil {
			return err
		}
	}
	if flags&hasResult != 0 {
		if msg.Result, err = r.readString("result"); err != nil {
			return err
		}
	}
	if flags&hasWaiters != 0 {
		if msg.Waiters, err = r.readUint64("waiters"); err != nil {
			return err
		}
	}
	if flags&hasErr != 0 {
		if msg.Err, err = r.readString("error"); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Device != "" {
		size += 4 + len(msg.Device)
	}
	if msg.Timeout > 0 {
		size += 8
	}
	if msg.Result != "" {
		size += 4 + len(msg.Result)
	}
	if msg.Waiters > 0 {
		size += 8
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	return size
}

// appendString appends a length prefixed string
func appendString(b []byte, s string) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// reader reads length prefixed fields from a serialized message
type reader struct {
	data []byte
	pos  int
}

func (r *reader) readUint64(field string) (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("data too short for %s", field)
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *reader) readString(field string) (string, error) {
	if r.pos+4 > len(r.data) {
		return "", fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4

	if n < 0 || r.pos+n > len(r.data) {
		return "", fmt.Errorf("data too short for %s data", field)
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

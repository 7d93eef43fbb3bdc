// Package serializer converts common.Message values to and from bytes for the
// devlock RPC layer.
//
// Implementations:
//
//   - JSON: the default. Reset requests are rare, and a human readable body
//     makes it easy to trigger a reset with curl.
//
//   - GOB: Go's gob encoding, for Go-only deployments.
//
//   - Binary: a compact custom format. A type byte and a flags byte are
//     followed by the present fields in flag order; strings carry a uint32
//     length prefix, numbers are big endian uint64 and the boolean fields
//     live in the flags byte itself.
//
// All serializers are stateless and safe for concurrent use.
//
// Usage:
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewResetRequest("XBOX"))
//	// ... send data ...
//	var resp common.Message
//	err = s.Deserialize(respData, &resp)
package serializer

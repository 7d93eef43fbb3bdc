package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/devlock/rpc/common"
)

// NewGOBSerializer creates a serializer using Go's gob format. Both ends must
// be devlock binaries since gob carries Go type information.
func NewGOBSerializer() IRPCSerializer {
	return gobSerializerImpl{}
}

// gobSerializerImpl encodes every message with a fresh encoder, so each
// payload is self-describing and no stream state is shared between requests
type gobSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(msg)
}

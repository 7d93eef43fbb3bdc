package serializer

import (
	"encoding/json"

	"github.com/ValentinKolb/devlock/rpc/common"
)

// NewJSONSerializer creates the default serializer. A reset request encodes as
// {"msg_type":"reset","device":"XBOX"}, so it can be written by hand.
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

// jsonSerializerImpl encodes messages as json objects with the message type
// as a string and empty fields omitted
type jsonSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return json.Unmarshal(b, msg)
}

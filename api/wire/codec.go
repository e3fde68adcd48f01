package wire

import (
	"github.com/pkg/errors"
)

// CodecName is what both ends force via grpc.ForceServerCodec and
// grpc.ForceCodec; the strings must match or the handshake fails.
const CodecName = "arbor-wire"

// Codec plugs the hand-rolled messages into grpc's encoding layer.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	msg, ok := v.(Message)
	if !ok {
		return nil, errors.Errorf("wire: cannot marshal %T", v)
	}
	return msg.MarshalWire()
}

func (Codec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(Message)
	if !ok {
		return errors.Errorf("wire: cannot unmarshal into %T", v)
	}
	return msg.UnmarshalWire(data)
}

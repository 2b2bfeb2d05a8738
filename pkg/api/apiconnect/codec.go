package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is registered in place of Connect's default protobuf JSON codec.
const CodecName = "json"

// jsonCodec encodes plain Go message structs with encoding/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	// Browsers may post an empty body for parameterless calls.
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON is the codec option every handler and client in this package uses.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

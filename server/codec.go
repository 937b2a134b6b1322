package server

import (
	"encoding/json"
	"fmt"
)

// jsonCodec lets Connect handlers exchange plain Go structs as JSON
// instead of generated protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	return nil
}

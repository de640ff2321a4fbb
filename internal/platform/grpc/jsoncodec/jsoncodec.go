// Package jsoncodec registers a JSON gRPC codec for plain Go message structs.
//
// Clients select it per call with grpc.CallContentSubtype(Name); servers pick
// it from the request content-type (application/grpc+json).
package jsoncodec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the codec name and gRPC content subtype.
const Name = "json"

// Codec marshals gRPC messages as JSON.
type Codec struct{}

func init() {
	encoding.RegisterCodec(Codec{})
}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal %T: %w", v, err)
	}
	return nil
}

// Name implements encoding.Codec.
func (Codec) Name() string {
	return Name
}

// Package grpc exposes internal/shade's read operations and a narrow set
// of operator-triggered writes over google.golang.org/grpc, the way
// SPEC_FULL.md's operator surface calls for. Without a .proto toolchain
// available, request/response messages are plain Go structs carried by a
// hand-written grpc/encoding.Codec built on the same ugorji/go/codec
// msgpack handle internal/shade uses for storage, instead of
// protobuf-generated types.
package grpc

import (
	"fmt"

	"github.com/ugorji/go/codec"
	"google.golang.org/grpc/encoding"
)

const codecName = "shade-msgpack"

var mh codec.MsgpackHandle

// wireCodec implements encoding.Codec, letting grpc.NewServer and
// grpc.Dial exchange the plain structs in messages.go without a
// protobuf-generated Marshal/Unmarshal pair.
type wireCodec struct{}

func (wireCodec) Marshal(v any) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, &mh)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("grpc codec: marshal: %w", err)
	}
	return buf, nil
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, &mh)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("grpc codec: unmarshal: %w", err)
	}
	return nil
}

func (wireCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(wireCodec{})
}

// Codec returns the encoding.Codec used to exchange messages.go's plain
// structs, for grpc.NewServer(grpc.ForceServerCodec(grpc.Codec())) and the
// matching grpc.ForceCodec on the client side.
func Codec() encoding.Codec { return wireCodec{} }

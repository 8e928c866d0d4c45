// CompactCodec is the binary alternative to JSONCodec: values that implement
// proto.Message get protobuf's compact encoding, everything else falls back
// to gob (the only serializer that can round-trip an arbitrary Go struct
// without a schema). Either way the result is snappy-compressed before it
// becomes messageData, following Lubby-ch-rpc's protorpc-v2, which pairs
// protobuf with snappy the same way.
package codec

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/golang/snappy"
	"google.golang.org/protobuf/proto"
)

// serialization tags the first byte of the pre-compression payload so Decode
// knows which path Encode took.
type serialization byte

const (
	serializationGob   serialization = 0
	serializationProto serialization = 1
)

type CompactCodec struct{}

func (c *CompactCodec) Encode(v any) ([]byte, error) {
	var tag serialization
	var raw []byte
	var err error

	if msg, ok := v.(proto.Message); ok {
		tag = serializationProto
		raw, err = proto.Marshal(msg)
	} else {
		tag = serializationGob
		var buf bytes.Buffer
		err = gob.NewEncoder(&buf).Encode(v)
		raw = buf.Bytes()
	}
	if err != nil {
		return nil, err
	}

	tagged := make([]byte, 1+len(raw))
	tagged[0] = byte(tag)
	copy(tagged[1:], raw)

	return snappy.Encode(nil, tagged), nil
}

func (c *CompactCodec) Decode(data []byte, v any) error {
	tagged, err := snappy.Decode(nil, data)
	if err != nil {
		return err
	}
	if len(tagged) == 0 {
		return errors.New("CompactCodec: empty payload")
	}

	tag := serialization(tagged[0])
	raw := tagged[1:]

	switch tag {
	case serializationProto:
		msg, ok := v.(proto.Message)
		if !ok {
			return errors.New("CompactCodec: payload was protobuf-encoded but v is not a proto.Message")
		}
		return proto.Unmarshal(raw, msg)
	case serializationGob:
		return gob.NewDecoder(bytes.NewReader(raw)).Decode(v)
	default:
		return errors.New("CompactCodec: unknown serialization tag")
	}
}

func (c *CompactCodec) Type() Type {
	return TypeCompact
}

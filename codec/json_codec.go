package codec

import "encoding/json"

// JSONCodec uses the standard library encoding/json. Human-readable,
// cross-language, easy to debug over the wire — the default codec because
// nothing in the pack reaches for a third-party JSON library over stdlib's.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) Type() Type {
	return TypeJSON
}

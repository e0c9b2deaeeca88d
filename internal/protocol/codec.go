package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec turns messages into frames and back. Both ends of a deployment
// must agree on the codec.
type Codec interface {
	Name() string
	// Binary reports whether frames must travel as binary websocket messages.
	Binary() bool
	Encode(Message) ([]byte, error)
	Decode([]byte) (Message, error)
}

const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// NewCodec returns the codec registered under name.
func NewCodec(name string) (Codec, error) {
	switch name {
	case CodecJSON, "":
		return JSON{}, nil
	case CodecCBOR:
		return newCBOR()
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type JSON struct{}

func (JSON) Name() string { return CodecJSON }
func (JSON) Binary() bool { return false }

func (JSON) Encode(m Message) ([]byte, error) { return json.Marshal(m) }

func (JSON) Decode(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

// CBOR uses core deterministic encoding; struct fields fall back to their json tags.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBOR() (*CBOR, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder: %w", err)
	}
	return &CBOR{enc: enc, dec: dec}, nil
}

func (*CBOR) Name() string { return CodecCBOR }
func (*CBOR) Binary() bool { return true }

func (c *CBOR) Encode(m Message) ([]byte, error) { return c.enc.Marshal(m) }

func (c *CBOR) Decode(data []byte) (Message, error) {
	var m Message
	err := c.dec.Unmarshal(data, &m)
	return m, err
}

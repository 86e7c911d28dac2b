package codec

import (
	"fmt"
	"sync"
)

// DataType identifies the packed representation of a record payload.
type DataType uint8

// Data type codes. The numbering follows the standard-file convention so
// metadata dumped from existing archives maps directly.
const (
	TypeBinary   DataType = 0 // bit-packed words, no numeric transform
	TypeScaled   DataType = 1 // linear min/scale fixed-point
	TypeUnsigned DataType = 2 // bit-packed unsigned integers
	TypeSigned   DataType = 4 // two's-complement bit-packed integers
	TypeFloat    DataType = 5 // raw IEEE 754 at 32 or 64 bits

	// TurboFlag marks a payload whose packed bytes are lz4 block compressed.
	TurboFlag DataType = 0x80
)

// Errors
var (
	ErrUnknownType = &Error{"unknown data type code"}
	ErrBadWidth    = &Error{"bit width inconsistent with data type"}
	ErrShortData   = &Error{"packed data shorter than required"}
	ErrValueRange  = &Error{"value out of range for bit width"}
)

// Error represents a codec error.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// EncodeFunc packs values into the on-disk representation at the given width.
type EncodeFunc func(values []float32, nbits uint8) ([]byte, error)

// DecodeFunc unpacks exactly len(out) values from the packed span.
type DecodeFunc func(packed []byte, nbits uint8, out []float32) error

// Codec is one registered packed representation.
type Codec struct {
	Name   string
	Encode EncodeFunc
	Decode DecodeFunc
}

var (
	registryMu sync.RWMutex
	registry   = map[DataType]Codec{}
)

// Register adds or replaces the codec for a data type code. The code must not
// carry the turbo flag; compression is layered on top of the base codec.
func Register(code DataType, c Codec) {
	if code&TurboFlag != 0 {
		panic("codec: cannot register a turbo-flagged code")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[code] = c
}

// Lookup returns the codec for a data type code, ignoring the turbo flag.
func Lookup(code DataType) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[code&^TurboFlag]
	if !ok {
		return Codec{}, fmt.Errorf("%w: %d", ErrUnknownType, code)
	}
	return c, nil
}

// Registered reports whether a data type code names a codec.
func Registered(code DataType) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[code&^TurboFlag]
	return ok
}

// Decode unpacks len(out) values from packed, dispatching on code and width.
// Turbo-flagged codes are lz4 decompressed before the base codec runs.
func Decode(code DataType, nbits uint8, packed []byte, out []float32) error {
	c, err := Lookup(code)
	if err != nil {
		return err
	}

	if code&TurboFlag != 0 {
		packed, err = turboDecompress(packed)
		if err != nil {
			return err
		}
	}

	return c.Decode(packed, nbits, out)
}

// Encode packs values at the given width, dispatching on code. Turbo-flagged
// codes lz4 compress the base codec's output.
func Encode(code DataType, nbits uint8, values []float32) ([]byte, error) {
	c, err := Lookup(code)
	if err != nil {
		return nil, err
	}

	packed, err := c.Encode(values, nbits)
	if err != nil {
		return nil, err
	}

	if code&TurboFlag != 0 {
		return turboCompress(packed)
	}
	return packed, nil
}

func init() {
	Register(TypeBinary, Codec{Name: "binary", Encode: encodeUnsigned, Decode: decodeUnsigned})
	Register(TypeScaled, Codec{Name: "scaled", Encode: encodeScaled, Decode: decodeScaled})
	Register(TypeUnsigned, Codec{Name: "unsigned", Encode: encodeUnsigned, Decode: decodeUnsigned})
	Register(TypeSigned, Codec{Name: "signed", Encode: encodeSigned, Decode: decodeSigned})
	Register(TypeFloat, Codec{Name: "ieee", Encode: encodeFloat, Decode: decodeFloat})
}

// Package codec implements the packed payload codecs for SkadiDB archives.
//
// Every record payload is stored as a dense bit-packed byte span whose
// interpretation is selected by a data type code and a bit width. The codec
// package maps (code, width) to an encode/decode pair through a registry, so
// new packed representations can be added without touching the archive layer.
//
// # Data type codes
//
// The codes mirror the numbering used by meteorological standard files:
//
//	0  raw binary       bit-packed unsigned words, no numeric transform
//	1  scaled           linear min/scale fixed-point quantization
//	2  unsigned integer bit-packed unsigned integers, widths 1..32
//	4  signed integer   two's-complement bit-packed integers, widths 2..32
//	5  IEEE float       raw IEEE 754 values at widths 32 or 64
//
// Setting bit 7 (0x80) on any code selects the turbo variant: the packed
// bytes of the base code are additionally lz4 block compressed.
//
// # Canonical element type
//
// Decoding always produces float32 values, the engine's canonical in-memory
// element type. Decode never mutates its input span and allocates nothing
// beyond the caller-supplied output slice.
package codec

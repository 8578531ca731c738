// Package goldentest provides a determinism-checking helper for the
// collision engine's test suite (spec §8, property 9): encode two result
// sets with msgpack and compare the raw bytes, rather than comparing
// structs field-by-field. msgpack is the teacher's own wire-encoding
// library, repurposed here from network serialization (GameState over a
// websocket) to a test-only byte-equality oracle.
package goldentest

import "github.com/vmihailenco/msgpack/v5"

// Encode serializes v deterministically. msgpack's struct encoder walks
// fields in declaration order, so two equal inputs always yield identical
// bytes — exactly the property a byte-for-byte determinism check needs.
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// SameBytes reports whether a and b encode identically, failing closed
// (false) if either fails to encode.
func SameBytes(a, b any) bool {
	ea, err := Encode(a)
	if err != nil {
		return false
	}
	eb, err := Encode(b)
	if err != nil {
		return false
	}
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}

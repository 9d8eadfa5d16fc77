// Package codec converts element values to and from the raw form kept in
// the store. A typed list in plain mode casts every raw element through a
// Codec; configuration on the codec value (a base, a bit size, a
// deterministic flag) stands in for extra construction arguments.
package codec

// Codec encodes V to the stored bytes and decodes it back.
// Decode errors are surfaced to the caller unmodified.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

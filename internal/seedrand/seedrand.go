// Package seedrand provides the reproducible pseudo-random sequence that
// stands in for model inference in the image and video detectors.
//
// A Source is keyed by a string. The key is hashed over its UTF-16 code
// units with a 31-multiplier rolling hash in signed 32-bit arithmetic, and
// the absolute value seeds a 32-bit linear congruential generator. Every
// platform produces the same sequence for the same key.
package seedrand

import "unicode/utf16"

const (
	multiplier = 1664525
	increment  = 1013904223
	modulus    = 1 << 32
)

// Source is a deterministic generator. It is not safe for concurrent use;
// each analysis owns its own Source.
type Source struct {
	state uint64
	draws int
}

// New returns a Source seeded from key.
func New(key string) *Source {
	return &Source{state: Seed(key)}
}

// Hash is the signed 32-bit rolling hash of key's UTF-16 code units.
func Hash(key string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(key)) {
		h = h*31 + int32(c)
	}
	return h
}

// Seed returns |Hash(key)|. The absolute value of math.MinInt32 is kept as
// 2^31 rather than wrapping back to a negative number.
func Seed(key string) uint64 {
	h := int64(Hash(key))
	if h < 0 {
		h = -h
	}
	return uint64(h)
}

// Next advances the generator and returns a value in [0, 1).
func (s *Source) Next() float64 {
	s.state = (multiplier*s.state + increment) % modulus
	s.draws++
	return float64(s.state) / modulus
}

// Draws reports how many values have been taken from the Source.
func (s *Source) Draws() int { return s.draws }

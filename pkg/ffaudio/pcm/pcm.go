// Package pcm converts raw little-endian 32-bit float PCM byte streams into
// float32 sample slices.
//
// The decoder operates on arbitrary byte chunks: a chunk boundary may fall in
// the middle of a 4-byte sample frame, so [Decode] returns the trailing
// partial frame as carry bytes to be prepended to the next chunk. Decoding is
// a pure reinterpretation of the bytes — no scaling, clamping, or resampling
// is applied; the producer is expected to emit samples already normalised to
// the [-1.0, 1.0] range.
package pcm

import (
	"encoding/binary"
	"math"
)

// FrameSize is the number of bytes per sample frame (one float32).
const FrameSize = 4

// Decode interprets the concatenation of carry and data as consecutive
// little-endian IEEE-754 float32 frames. It returns the decoded samples and
// the 0–3 trailing bytes that did not form a whole frame. The returned carry
// is always a fresh slice, safe to hold across reuses of the input buffer.
//
// At end of stream any remaining carry cannot represent a sample and should
// be discarded by the caller.
func Decode(data, carry []byte) ([]float32, []byte) {
	b := data
	if len(carry) > 0 {
		b = make([]byte, 0, len(carry)+len(data))
		b = append(b, carry...)
		b = append(b, data...)
	}

	n := len(b) / FrameSize
	samples := make([]float32, n)
	for i := range n {
		bits := binary.LittleEndian.Uint32(b[i*FrameSize:])
		samples[i] = math.Float32frombits(bits)
	}

	rest := b[n*FrameSize:]
	newCarry := make([]byte, len(rest))
	copy(newCarry, rest)
	return samples, newCarry
}

// Encode converts float32 samples to little-endian bytes. It is the inverse
// of [Decode] and exists mainly for tests and fixtures that need to fabricate
// raw streams.
func Encode(samples []float32) []byte {
	buf := make([]byte, len(samples)*FrameSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*FrameSize:], math.Float32bits(s))
	}
	return buf
}

// SampleCount returns the number of whole sample frames contained in n bytes.
func SampleCount(n int) int {
	return n / FrameSize
}

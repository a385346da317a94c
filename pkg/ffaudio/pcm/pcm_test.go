package pcm_test

import (
	"testing"

	"github.com/speech2srt/ffmpeg-audio/pkg/ffaudio/pcm"
)

func TestDecodeWholeFrames(t *testing.T) {
	want := []float32{0, 1, -1, 0.5, -0.25}
	samples, carry := pcm.Decode(pcm.Encode(want), nil)
	if len(carry) != 0 {
		t.Fatalf("unexpected carry of %d bytes", len(carry))
	}
	if len(samples) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(samples), len(want))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestDecodeCarriesPartialFrame(t *testing.T) {
	raw := pcm.Encode([]float32{1, 2, 3})
	for cut := 1; cut < pcm.FrameSize; cut++ {
		first, second := raw[:len(raw)-cut], raw[len(raw)-cut:]

		samples, carry := pcm.Decode(first, nil)
		if len(samples) != 2 {
			t.Fatalf("cut %d: got %d samples from first chunk, want 2", cut, len(samples))
		}
		if len(carry) != pcm.FrameSize-cut {
			t.Fatalf("cut %d: got %d carry bytes, want %d", cut, len(carry), pcm.FrameSize-cut)
		}

		rest, carry := pcm.Decode(second, carry)
		if len(carry) != 0 {
			t.Fatalf("cut %d: leftover carry of %d bytes", cut, len(carry))
		}
		if len(rest) != 1 || rest[0] != 3 {
			t.Fatalf("cut %d: got %v, want [3]", cut, rest)
		}
	}
}

// Decoding a stream in arbitrary chunk sizes must produce the same samples
// as decoding it whole.
func TestDecodeChunkingEquivalence(t *testing.T) {
	src := make([]float32, 1000)
	for i := range src {
		src[i] = float32(i%200-100) / 100.0
	}
	raw := pcm.Encode(src)

	whole, carry := pcm.Decode(raw, nil)
	if len(carry) != 0 {
		t.Fatalf("whole decode left %d carry bytes", len(carry))
	}

	for _, chunkSize := range []int{1, 3, 4, 7, 64, 333} {
		var got []float32
		carry = nil
		for off := 0; off < len(raw); off += chunkSize {
			end := min(off+chunkSize, len(raw))
			var samples []float32
			samples, carry = pcm.Decode(raw[off:end], carry)
			got = append(got, samples...)
		}
		if len(carry) != 0 {
			t.Fatalf("chunk size %d: leftover carry of %d bytes", chunkSize, len(carry))
		}
		if len(got) != len(whole) {
			t.Fatalf("chunk size %d: got %d samples, want %d", chunkSize, len(got), len(whole))
		}
		for i := range whole {
			if got[i] != whole[i] {
				t.Fatalf("chunk size %d: sample %d: got %v, want %v", chunkSize, i, got[i], whole[i])
			}
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	samples, carry := pcm.Decode(nil, nil)
	if len(samples) != 0 || len(carry) != 0 {
		t.Fatalf("got %d samples and %d carry bytes, want none", len(samples), len(carry))
	}
}

func TestDecodeCarryIsIndependent(t *testing.T) {
	buf := pcm.Encode([]float32{1, 2})
	_, carry := pcm.Decode(buf[:6], nil)

	// Mutating the original buffer must not affect the snapshotted carry.
	buf[4] = 0xFF
	samples, rest := pcm.Decode(buf[6:], carry)
	if len(rest) != 0 {
		t.Fatalf("leftover carry of %d bytes", len(rest))
	}
	if len(samples) != 1 || samples[0] != 2 {
		t.Fatalf("got %v, want [2]", samples)
	}
}

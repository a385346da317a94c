package ffaudio_test

import (
	"testing"

	"github.com/speech2srt/ffmpeg-audio/pkg/ffaudio"
)

func TestDefaultsFromEnvBuiltins(t *testing.T) {
	t.Setenv("FFMPEG_STREAM_CHUNK_DURATION_SEC", "")
	t.Setenv("FFMPEG_TIMEOUT_MS", "")
	d := ffaudio.DefaultsFromEnv()
	if d.ChunkDurationSec != ffaudio.DefaultChunkDurationSec {
		t.Errorf("chunk: got %d, want %d", d.ChunkDurationSec, ffaudio.DefaultChunkDurationSec)
	}
	if d.TimeoutMS != ffaudio.DefaultTimeoutMS {
		t.Errorf("timeout: got %d, want %d", d.TimeoutMS, ffaudio.DefaultTimeoutMS)
	}
}

func TestDefaultsFromEnvOverrides(t *testing.T) {
	t.Setenv("FFMPEG_STREAM_CHUNK_DURATION_SEC", "60")
	t.Setenv("FFMPEG_TIMEOUT_MS", " 2500 ")
	d := ffaudio.DefaultsFromEnv()
	if d.ChunkDurationSec != 60 {
		t.Errorf("chunk: got %d, want 60", d.ChunkDurationSec)
	}
	if d.TimeoutMS != 2500 {
		t.Errorf("timeout: got %d, want 2500", d.TimeoutMS)
	}
}

// Malformed or non-positive overrides fall back to the built-in defaults
// without failing.
func TestDefaultsFromEnvInvalidValues(t *testing.T) {
	for _, bad := range []string{"abc", "-1", "0", "12.5"} {
		t.Setenv("FFMPEG_STREAM_CHUNK_DURATION_SEC", bad)
		t.Setenv("FFMPEG_TIMEOUT_MS", bad)
		d := ffaudio.DefaultsFromEnv()
		if d.ChunkDurationSec != ffaudio.DefaultChunkDurationSec {
			t.Errorf("value %q: chunk got %d, want default", bad, d.ChunkDurationSec)
		}
		if d.TimeoutMS != ffaudio.DefaultTimeoutMS {
			t.Errorf("value %q: timeout got %d, want default", bad, d.TimeoutMS)
		}
	}
}

package ffaudio

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Output format constants. Every sample buffer produced by this package is
// mono float32 at this rate, the representation expected by speech-processing
// and energy-detection pipelines.
const (
	SampleRate = 16000
	Channels   = 1
)

// Built-in fallbacks for the environment-configurable defaults.
const (
	DefaultChunkDurationSec = 1200
	DefaultTimeoutMS        = 300_000
)

// Environment variables consulted once per [Decoder] for default overrides.
const (
	envChunkDurationSec = "FFMPEG_STREAM_CHUNK_DURATION_SEC"
	envTimeoutMS        = "FFMPEG_TIMEOUT_MS"
)

// Defaults holds the request-scoped default values resolved at Decoder
// construction. Immutable after resolution; the hot path never consults the
// environment.
type Defaults struct {
	// ChunkDurationSec is the duration of each streamed chunk in seconds.
	ChunkDurationSec int

	// TimeoutMS is the wall-clock budget for a full segment read in
	// milliseconds.
	TimeoutMS int64
}

// DefaultsFromEnv resolves defaults from the environment, falling back to the
// built-in values for absent or non-positive overrides. Malformed values are
// tolerated (logged, ignored) rather than failing the caller.
func DefaultsFromEnv() Defaults {
	d := Defaults{
		ChunkDurationSec: DefaultChunkDurationSec,
		TimeoutMS:        DefaultTimeoutMS,
	}
	if v, ok := envInt(envChunkDurationSec); ok {
		d.ChunkDurationSec = int(v)
	}
	if v, ok := envInt(envTimeoutMS); ok {
		d.TimeoutMS = v
	}
	return d
}

// envInt reads a positive integer from the named environment variable.
// Returns ok=false for absent, malformed, or non-positive values.
func envInt(name string) (int64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		slog.Warn("ffaudio: ignoring invalid environment override",
			"var", name,
			"value", raw,
		)
		return 0, false
	}
	return v, true
}

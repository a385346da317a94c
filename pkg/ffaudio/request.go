package ffaudio

import (
	"fmt"
	"log/slog"
	"strings"
)

// Request is a validated, normalised decode request. It is built by
// [newRequest] from the caller's options and is immutable afterwards.
//
// Absent optional fields are represented by their has flags rather than
// pointers: an absent start means "from the beginning of the file", an
// absent duration means "to the end of the file".
type Request struct {
	FilePath string

	StartMS  int64
	HasStart bool

	DurationMS  int64
	HasDuration bool

	// TimeoutMS is the wall-clock budget. Zero means no deadline.
	TimeoutMS int64

	// ChunkDurationSec is the target duration of each streamed chunk.
	ChunkDurationSec int
}

// Option configures a single decode request.
type Option func(*rawRequest)

// rawRequest collects unvalidated option values before normalisation.
type rawRequest struct {
	startMS     int64
	hasStart    bool
	durationMS  int64
	hasDuration bool
	timeoutMS   int64
	hasTimeout  bool
	chunkSec    int
	hasChunk    bool
}

// WithStart sets the start offset in milliseconds. Negative values are
// auto-corrected to "from the beginning" with a warning.
func WithStart(ms int64) Option {
	return func(r *rawRequest) {
		r.startMS = ms
		r.hasStart = true
	}
}

// WithDuration limits the decoded duration in milliseconds. Non-positive
// values are auto-corrected to "to the end of the file" with a warning.
func WithDuration(ms int64) Option {
	return func(r *rawRequest) {
		r.durationMS = ms
		r.hasDuration = true
	}
}

// WithTimeout overrides the wall-clock timeout in milliseconds. Non-positive
// values are auto-corrected to the configured default with a warning.
func WithTimeout(ms int64) Option {
	return func(r *rawRequest) {
		r.timeoutMS = ms
		r.hasTimeout = true
	}
}

// WithChunkDuration overrides the streamed chunk duration in seconds.
// Non-positive values are auto-corrected to the configured default with a
// warning.
func WithChunkDuration(sec int) Option {
	return func(r *rawRequest) {
		r.chunkSec = sec
		r.hasChunk = true
	}
}

// newRequest validates and normalises the caller's inputs against the
// resolved defaults.
//
// Policy (auto-correct-and-warn, not strict-fail):
//   - empty file path → ErrInvalidParameter, fatal
//   - start < 0 → treated as absent (read from beginning), warning
//   - duration <= 0 → treated as absent (read to end), warning
//   - chunk duration <= 0 → reset to default, warning
//   - timeout <= 0 → reset to default, warning
//
// A start offset without a duration is valid and means "read from the offset
// to the end of the file".
func newRequest(filePath string, defaults Defaults, hasTimeoutDefault bool, opts []Option) (Request, error) {
	if strings.TrimSpace(filePath) == "" {
		return Request{}, fmt.Errorf("%w: file_path must be a non-empty path", ErrInvalidParameter)
	}

	var raw rawRequest
	for _, opt := range opts {
		opt(&raw)
	}

	req := Request{
		FilePath:         filePath,
		ChunkDurationSec: defaults.ChunkDurationSec,
	}
	if hasTimeoutDefault {
		req.TimeoutMS = defaults.TimeoutMS
	}

	if raw.hasStart {
		if raw.startMS < 0 {
			slog.Warn("ffaudio: negative start offset, reading from beginning of file",
				"start_ms", raw.startMS,
			)
		} else {
			req.StartMS = raw.startMS
			req.HasStart = true
		}
	}

	if raw.hasDuration {
		if raw.durationMS <= 0 {
			slog.Warn("ffaudio: non-positive duration, reading to end of file",
				"duration_ms", raw.durationMS,
			)
		} else {
			req.DurationMS = raw.durationMS
			req.HasDuration = true
		}
	}

	if raw.hasTimeout {
		if raw.timeoutMS <= 0 {
			slog.Warn("ffaudio: non-positive timeout, using default",
				"timeout_ms", raw.timeoutMS,
				"default_ms", defaults.TimeoutMS,
			)
			req.TimeoutMS = defaults.TimeoutMS
		} else {
			req.TimeoutMS = raw.timeoutMS
		}
	}

	if raw.hasChunk {
		if raw.chunkSec <= 0 {
			slog.Warn("ffaudio: non-positive chunk duration, using default",
				"chunk_duration_sec", raw.chunkSec,
				"default_sec", defaults.ChunkDurationSec,
			)
		} else {
			req.ChunkDurationSec = raw.chunkSec
		}
	}

	return req, nil
}

// budgetSamples returns the total number of samples a bounded request should
// produce, or -1 when the request reads to the end of the file.
func (r Request) budgetSamples() int64 {
	if !r.HasDuration {
		return -1
	}
	return (r.DurationMS*SampleRate + 500) / 1000
}

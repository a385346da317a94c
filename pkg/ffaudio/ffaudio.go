// Package ffaudio decodes arbitrary audio and video files into normalised
// sample buffers by driving an external ffmpeg process.
//
// Every buffer it produces is mono float32 at 16 kHz with values in
// [-1.0, 1.0], the uniform representation expected by speech-processing and
// energy-detection pipelines, regardless of the source codec or container.
// ffmpeg performs all demuxing, decoding, resampling, and downmixing; this
// package builds the invocation, supervises the child process, parses its
// raw little-endian float32 byte stream, and classifies its failures.
//
// Two entry points are provided:
//
//   - [Decoder.Read] decodes a time range into one in-memory buffer.
//   - [Decoder.Stream] decodes incrementally in bounded-memory chunks.
//
// Package-level [Read] and [Stream] wrappers use a shared default [Decoder]
// whose chunk-duration and timeout defaults are resolved once from the
// environment (FFMPEG_STREAM_CHUNK_DURATION_SEC, FFMPEG_TIMEOUT_MS).
package ffaudio

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/speech2srt/ffmpeg-audio/internal/observe"
	"github.com/speech2srt/ffmpeg-audio/pkg/ffaudio/pcm"
)

// readBufSize is the stdout pull size for full-segment reads.
const readBufSize = 1 << 20

// Decoder decodes media files via an external ffmpeg binary. The zero-cost
// way to obtain one is [New]; a single Decoder is safe for concurrent use —
// each call owns its own child process and decode state.
type Decoder struct {
	bin      string
	defaults Defaults
	metrics  *observe.Metrics

	lookOnce sync.Once
	lookErr  error
}

// DecoderOption configures a [Decoder] at construction.
type DecoderOption func(*Decoder)

// WithFFmpegPath overrides the ffmpeg executable path or name. The default
// is "ffmpeg", resolved via PATH.
func WithFFmpegPath(path string) DecoderOption {
	return func(d *Decoder) { d.bin = path }
}

// WithMetrics overrides the metrics instance, mainly so tests can isolate
// their own meter provider.
func WithMetrics(m *observe.Metrics) DecoderOption {
	return func(d *Decoder) { d.metrics = m }
}

// New returns a Decoder with defaults resolved from the environment.
func New(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		bin:      ffmpegBin,
		defaults: DefaultsFromEnv(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		d.metrics = observe.DefaultMetrics()
	}
	return d
}

// ensureTool checks once per Decoder that the ffmpeg executable exists. A
// missing binary is an environment fact, not a per-call condition, so the
// result is cached: every subsequent call fails the same way immediately.
func (d *Decoder) ensureTool() error {
	d.lookOnce.Do(func() {
		d.lookErr = lookPath(d.bin)
	})
	return d.lookErr
}

// Read decodes the requested segment of the file into a single sample
// buffer. With no options the whole file is decoded; [WithStart] and
// [WithDuration] bound the range, and [WithTimeout] overrides the default
// wall-clock budget. A seek at or beyond the end of the file yields an empty
// buffer, not an error. On failure, partial output is discarded and the
// child process is always terminated and reaped before the error surfaces.
func (d *Decoder) Read(ctx context.Context, filePath string, opts ...Option) ([]float32, error) {
	req, err := newRequest(filePath, d.defaults, true, opts)
	if err != nil {
		return nil, err
	}
	if err := d.ensureTool(); err != nil {
		d.countFailure(ctx, err)
		return nil, err
	}

	ctx, span := observe.StartSpan(ctx, "ffaudio.Read", trace.WithAttributes(
		attribute.String("ffaudio.file_path", req.FilePath),
		attribute.Int64("ffaudio.start_ms", req.StartMS),
		attribute.Int64("ffaudio.duration_ms", req.DurationMS),
	))
	defer span.End()
	started := time.Now()

	p, err := startProcess(ctx, d.bin, req)
	if err != nil {
		d.countFailure(ctx, err)
		return nil, err
	}
	defer p.close()

	samples := []float32{}
	var carry []byte
	var readErr error
	buf := make([]byte, readBufSize)
	for {
		n, rerr := p.stdout.Read(buf)
		if n > 0 {
			var s []float32
			s, carry = pcm.Decode(buf[:n], carry)
			samples = append(samples, s...)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			// The pipe broke, usually because the child died or was
			// killed; finish() below explains why.
			readErr = rerr
			break
		}
	}
	// Any trailing 1–3 carry bytes cannot form a sample and are dropped.

	if err := p.finish(req.FilePath); err != nil {
		d.countFailure(ctx, err)
		return nil, err
	}
	if readErr != nil {
		d.countFailure(ctx, readErr)
		return nil, readErr
	}

	d.metrics.DecodeDuration.Record(ctx, time.Since(started).Seconds(),
		metric.WithAttributes(attribute.String("mode", "read")))
	d.metrics.DecodedSamples.Add(ctx, int64(len(samples)))
	observe.Logger(ctx).Debug("ffaudio: segment decoded",
		"file_path", req.FilePath,
		"samples", len(samples),
		"elapsed", time.Since(started),
	)
	return samples, nil
}

func (d *Decoder) countFailure(ctx context.Context, err error) {
	d.metrics.DecodeFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kindName(err))))
}

// defaultDecoder backs the package-level convenience functions.
var defaultDecoder = sync.OnceValue(func() *Decoder { return New() })

// Default returns the shared package-level Decoder.
func Default() *Decoder { return defaultDecoder() }

// Read decodes a segment using the package-level default [Decoder].
func Read(ctx context.Context, filePath string, opts ...Option) ([]float32, error) {
	return Default().Read(ctx, filePath, opts...)
}

// Stream starts a chunked decode using the package-level default [Decoder].
func Stream(ctx context.Context, filePath string, opts ...Option) (*StreamReader, error) {
	return Default().Stream(ctx, filePath, opts...)
}

package ffaudio

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/speech2srt/ffmpeg-audio/internal/observe"
	"github.com/speech2srt/ffmpeg-audio/pkg/ffaudio/pcm"
)

// StreamReader is an active chunked decode. It owns the underlying ffmpeg
// process for the lifetime of the iteration; [StreamReader.Close] terminates
// and reaps it, and is guaranteed to have run by the time iteration via
// [StreamReader.Chunks] ends for any reason. A StreamReader is restartable
// only by calling [Decoder.Stream] again — it cannot be resumed mid-stream.
//
// Not safe for concurrent use; each call owns its own StreamReader.
type StreamReader struct {
	d   *Decoder
	p   *process
	req Request

	carry []byte
	buf   []byte

	// remaining is the unemitted sample budget, or -1 when the request
	// reads to the end of the file.
	remaining    int64
	chunkSamples int

	started time.Time
	span    trace.Span
	ctx     context.Context

	done bool
	err  error

	closeOnce sync.Once
}

// Stream starts an incremental decode of the file, returning a reader that
// yields approximately [WithChunkDuration]-sized sample buffers (default
// 1200 s, env-overridable). The stream stops at end of output or once the
// [WithDuration] budget has been emitted; bytes beyond the budget are never
// read. Unlike [Decoder.Read], no timeout applies unless [WithTimeout] is
// given: streams are expected to outlive any fixed budget.
//
// The caller must call Close (directly, or implicitly by ranging over
// [StreamReader.Chunks] to completion or breaking out of it).
func (d *Decoder) Stream(ctx context.Context, filePath string, opts ...Option) (*StreamReader, error) {
	req, err := newRequest(filePath, d.defaults, false, opts)
	if err != nil {
		return nil, err
	}
	if err := d.ensureTool(); err != nil {
		d.countFailure(ctx, err)
		return nil, err
	}

	ctx, span := observe.StartSpan(ctx, "ffaudio.Stream", trace.WithAttributes(
		attribute.String("ffaudio.file_path", req.FilePath),
		attribute.Int("ffaudio.chunk_duration_sec", req.ChunkDurationSec),
	))

	p, err := startProcess(ctx, d.bin, req)
	if err != nil {
		d.countFailure(ctx, err)
		span.End()
		return nil, err
	}

	d.metrics.ActiveStreams.Add(ctx, 1)
	return &StreamReader{
		d:            d,
		p:            p,
		req:          req,
		remaining:    req.budgetSamples(),
		chunkSamples: req.ChunkDurationSec * SampleRate,
		started:      time.Now(),
		span:         span,
		ctx:          ctx,
	}, nil
}

// Next returns the next chunk of samples. The final chunk may be shorter
// than the configured chunk duration. After the stream is exhausted Next
// returns io.EOF; after a failure it keeps returning the same error. A
// partial chunk accumulated before a failure is discarded, not returned.
func (s *StreamReader) Next() ([]float32, error) {
	if s.done {
		return nil, s.err
	}

	want := int64(s.chunkSamples)
	if s.remaining >= 0 && s.remaining < want {
		want = s.remaining
	}
	if want == 0 {
		// Duration budget fully emitted; stop without reading further.
		return nil, s.stop(nil)
	}

	need := int(want * pcm.FrameSize)
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]
	n, rerr := io.ReadFull(s.p.stdout, buf)

	var samples []float32
	if n > 0 {
		samples, s.carry = pcm.Decode(buf[:n], s.carry)
		if s.remaining >= 0 {
			s.remaining -= int64(len(samples))
		}
	}

	switch {
	case rerr == nil:
		s.d.metrics.DecodedSamples.Add(s.ctx, int64(len(samples)))
		return samples, nil

	case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
		// Output exhausted: reap the child and surface its verdict. Any
		// 1–3 trailing carry bytes cannot form a sample and are dropped.
		if ferr := s.p.finish(s.req.FilePath); ferr != nil {
			return nil, s.stop(ferr)
		}
		if len(samples) > 0 {
			s.d.metrics.DecodedSamples.Add(s.ctx, int64(len(samples)))
			return samples, nil
		}
		return nil, s.stop(nil)

	default:
		// The pipe broke mid-read; finish explains why (kill, crash).
		if ferr := s.p.finish(s.req.FilePath); ferr != nil {
			return nil, s.stop(ferr)
		}
		return nil, s.stop(rerr)
	}
}

// stop transitions the stream to its terminal state and releases the child.
// A nil cause means normal exhaustion (Next will report io.EOF).
func (s *StreamReader) stop(cause error) error {
	s.done = true
	if cause == nil {
		cause = io.EOF
	} else {
		s.d.countFailure(s.ctx, cause)
	}
	s.err = cause
	s.Close()
	return s.err
}

// Close terminates the underlying process if it is still running, reaps it,
// and releases all handles. Idempotent; always returns nil. Abandoning a
// stream early without Close leaks a child process — use [StreamReader.Chunks]
// when ranging, which closes on every exit path.
func (s *StreamReader) Close() error {
	s.closeOnce.Do(func() {
		s.p.close()
		s.done = true
		if s.err == nil {
			s.err = io.EOF
		}
		s.d.metrics.ActiveStreams.Add(s.ctx, -1)
		s.d.metrics.DecodeDuration.Record(s.ctx, time.Since(s.started).Seconds(),
			metric.WithAttributes(attribute.String("mode", "stream")))
		s.span.End()
		observe.Logger(s.ctx).Debug("ffaudio: stream closed",
			"file_path", s.req.FilePath,
			"elapsed", time.Since(s.started),
		)
	})
	return nil
}

// Chunks adapts the stream to a range-over-func iterator. The stream is
// closed when the loop finishes, errors, or the caller breaks out early.
// The second value is non-nil exactly once, as the last element, when the
// stream fails; io.EOF is never yielded.
func (s *StreamReader) Chunks() iter.Seq2[[]float32, error] {
	return func(yield func([]float32, error) bool) {
		defer s.Close()
		for {
			chunk, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

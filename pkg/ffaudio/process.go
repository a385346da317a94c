package ffaudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxStderrBytes caps captured diagnostics so a chatty or looping process
// cannot grow memory without bound. ffmpeg error output is normally a few
// lines; 64 KiB preserves far more context than classification needs.
const maxStderrBytes = 64 << 10

// reapDelay bounds how long wait blocks on a killed process whose pipes are
// still held open by a grandchild.
const reapDelay = 5 * time.Second

// process owns a spawned ffmpeg child: its stdout byte stream, its captured
// stderr diagnostics, and the cancel handle that kills it. It is exclusively
// owned by the originating call and must be closed exactly once on every
// exit path.
type process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	// runCtx carries the per-request deadline. Consulted after exit to
	// distinguish a timeout kill from an ffmpeg failure.
	runCtx context.Context
	cancel context.CancelFunc

	// stderr is filled by the drain goroutine; read it only after wait.
	stderr  bytes.Buffer
	drainer *errgroup.Group

	waitOnce  sync.Once
	waitErr   error
	closeOnce sync.Once
}

// lookPath resolves bin via PATH, mapping a miss to ErrToolNotFound.
func lookPath(bin string) error {
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%w: %q", ErrToolNotFound, bin)
	}
	return nil
}

// startProcess spawns ffmpeg with the invocation derived from req. The
// child's stdout is exposed as p.stdout; stderr is drained concurrently into
// a bounded buffer so the child can never block on an unread diagnostic pipe.
// stdin is left closed. When req.TimeoutMS is positive the child runs under a
// deadline and is killed when it expires.
func startProcess(ctx context.Context, bin string, req Request) (*process, error) {
	var cancel context.CancelFunc
	if req.TimeoutMS > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMS)*time.Millisecond)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	cmd := exec.CommandContext(ctx, bin, buildArgs(req)...)
	cmd.WaitDelay = reapDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffaudio: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffaudio: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrToolNotFound, bin)
		}
		return nil, fmt.Errorf("ffaudio: spawn %q: %w", bin, err)
	}

	p := &process{
		cmd:     cmd,
		stdout:  stdout,
		runCtx:  ctx,
		cancel:  cancel,
		drainer: &errgroup.Group{},
	}
	p.drainer.Go(func() error {
		_, err := io.Copy(newBoundedWriter(&p.stderr, maxStderrBytes), stderrPipe)
		return err
	})
	return p, nil
}

// wait reaps the child exactly once: the stderr drainer is joined first so
// the diagnostic buffer is complete, then the process is waited on. Safe to
// call from finish and close in either order.
func (p *process) wait() error {
	p.waitOnce.Do(func() {
		_ = p.drainer.Wait()
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}

// finish is called after the output stream is exhausted. It reaps the child
// and turns its exit state into a typed error: nil for a clean exit,
// ErrTimeout when the request deadline killed it, the caller's cancellation
// error when the parent context did, and a classified diagnostic error
// otherwise. A zero exit with recognised failure signatures on stderr is
// still classified as a failure.
func (p *process) finish(path string) error {
	err := p.wait()
	diag := p.stderr.String()

	if err == nil {
		return classify(0, diag, path)
	}

	if ctxErr := p.runCtx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrTimeout, path)
		}
		return fmt.Errorf("ffaudio: decode aborted: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return classify(exitErr.ExitCode(), diag, path)
	}
	return fmt.Errorf("ffaudio: wait for ffmpeg: %w", err)
}

// close releases the process on any exit path: the child is killed if still
// running, its output handle is closed, and it is reaped. Idempotent.
func (p *process) close() {
	p.closeOnce.Do(func() {
		p.cancel()
		p.stdout.Close()
		_ = p.wait()
	})
}

// boundedWriter writes through to w until limit bytes have been written and
// silently discards the rest. io.Copy keeps draining the source either way.
type boundedWriter struct {
	w     io.Writer
	limit int
}

func newBoundedWriter(w io.Writer, limit int) *boundedWriter {
	return &boundedWriter{w: w, limit: limit}
}

func (b *boundedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if b.limit <= 0 {
		return n, nil
	}
	keep := min(n, b.limit)
	if _, err := b.w.Write(p[:keep]); err != nil {
		return 0, err
	}
	b.limit -= keep
	return n, nil
}

package ffaudio

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the decode failure taxonomy. Callers should test with
// [errors.Is]; richer context (exit code, stderr) is available by unwrapping
// to [*ProcessError] with [errors.As].
var (
	// ErrToolNotFound means the ffmpeg executable is not present in the
	// execution environment. This is a fixed environment fact for the
	// lifetime of a [Decoder] and is not retried per call.
	ErrToolNotFound = errors.New("ffaudio: ffmpeg executable not found in PATH")

	// ErrInvalidParameter means the request could not be constructed from
	// the given inputs (e.g. empty file path). The caller must fix the input.
	ErrInvalidParameter = errors.New("ffaudio: invalid parameter")

	// ErrFileNotFound means ffmpeg reported that the input file does not exist.
	ErrFileNotFound = errors.New("ffaudio: input file not found")

	// ErrPermission means ffmpeg was denied access to the input file.
	ErrPermission = errors.New("ffaudio: permission denied")

	// ErrUnsupportedFormat means the input could not be decoded: unknown
	// container, unsupported codec, or corrupt data.
	ErrUnsupportedFormat = errors.New("ffaudio: unsupported or corrupt media")

	// ErrTimeout means the decode made no progress within the configured
	// timeout and the process was forcibly terminated.
	ErrTimeout = errors.New("ffaudio: decode timed out")

	// ErrProcess is the catch-all for ffmpeg failures that match no known
	// diagnostic signature.
	ErrProcess = errors.New("ffaudio: ffmpeg failed")
)

// ProcessError carries the full failure context of an ffmpeg run: the input
// path, the process exit code, and the captured diagnostic (stderr) output.
// It unwraps to one of the sentinel error kinds above so that
// errors.Is(err, ErrUnsupportedFormat) etc. work on classified failures.
type ProcessError struct {
	Path     string
	ExitCode int
	Stderr   string

	kind error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%v: %s (exit code %d)", e.kind, e.Path, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.kind }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// errSignatures maps known ffmpeg diagnostic phrases to error kinds. The
// table is ordered: stderr can contain several signatures and the first match
// wins. All matching is case-insensitive substring search over the raw
// diagnostic text — deliberately heuristic, an unrecognised failure degrades
// to ErrProcess rather than succeeding silently.
var errSignatures = []struct {
	substr string
	kind   error
}{
	{"no such file or directory", ErrFileNotFound},
	{"could not open file", ErrFileNotFound},
	{"permission denied", ErrPermission},
	{"invalid data found when processing input", ErrUnsupportedFormat},
	{"moov atom not found", ErrUnsupportedFormat},
	{"unknown format", ErrUnsupportedFormat},
	{"decoder not found", ErrUnsupportedFormat},
	{"invalid argument", ErrUnsupportedFormat},
}

// kindName returns a stable short name for the error's taxonomy kind,
// suitable as a metric attribute value.
func kindName(err error) string {
	switch {
	case errors.Is(err, ErrToolNotFound):
		return "tool_not_found"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrPermission):
		return "permission_denied"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrProcess):
		return "process"
	default:
		return "other"
	}
}

// classify maps an ffmpeg exit code and its diagnostic output to a typed
// error. When the diagnostics match no known signature the generic ErrProcess
// kind is returned, carrying the exit code and full stderr for debugging.
// A zero exit with unmatched diagnostics is not an error; callers only invoke
// classify when the run is suspect (non-zero exit or non-empty stderr).
func classify(exitCode int, stderr, path string) error {
	lower := strings.ToLower(stderr)
	for _, sig := range errSignatures {
		if strings.Contains(lower, sig.substr) {
			return &ProcessError{Path: path, ExitCode: exitCode, Stderr: stderr, kind: sig.kind}
		}
	}
	if exitCode == 0 {
		return nil
	}
	return &ProcessError{Path: path, ExitCode: exitCode, Stderr: stderr, kind: ErrProcess}
}

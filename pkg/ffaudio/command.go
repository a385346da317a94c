package ffaudio

import "strconv"

// ffmpegBin is the executable name resolved via PATH unless overridden with
// [WithFFmpegPath].
const ffmpegBin = "ffmpeg"

// buildArgs constructs the ffmpeg argument list for a request. Pure
// construction: no filesystem access, nothing is spawned.
//
// The resulting invocation decodes the input, resamples to [SampleRate],
// downmixes to mono, and writes raw headerless little-endian 32-bit float
// PCM to stdout. Diagnostics go to stderr (-v error) so they can never
// corrupt the sample stream.
//
// The seek flag is placed before -i so ffmpeg seeks in the input (fast,
// keyframe-accurate) rather than decoding and discarding. Both -ss and -t
// are omitted entirely when the request reads from the beginning or to the
// end respectively.
func buildArgs(req Request) []string {
	args := []string{"-v", "error"}

	if req.HasStart {
		args = append(args, "-ss", msToSeconds(req.StartMS))
	}
	if req.HasDuration {
		args = append(args, "-t", msToSeconds(req.DurationMS))
	}

	args = append(args,
		"-i", req.FilePath,
		"-vn", // drop video streams
		"-sn", // drop subtitle streams
		"-dn", // drop data streams
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-f", "f32le",
		"-", // raw samples to stdout
	)
	return args
}

// msToSeconds renders a millisecond count as a decimal-seconds string the
// way ffmpeg expects it ("10.5", not "10500ms").
func msToSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', -1, 64)
}

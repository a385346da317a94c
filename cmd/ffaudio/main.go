// Command ffaudio decodes a segment of any audio/video file to a 16 kHz
// mono WAV file, using the same decode engine the library exposes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/speech2srt/ffmpeg-audio/internal/config"
	"github.com/speech2srt/ffmpeg-audio/internal/observe"
	"github.com/speech2srt/ffmpeg-audio/pkg/ffaudio"
)

// version is set via ldflags at build time.
var version = "dev"

var CLI struct {
	Input  string `arg:"" help:"Input audio/video file (any ffmpeg-readable format)." type:"path"`
	Output string `arg:"" help:"Output WAV file (16 kHz mono, 16-bit)." type:"path"`

	Start    *int64 `help:"Start offset in milliseconds."`
	Duration *int64 `help:"Duration to decode in milliseconds (default: to end of file)."`
	Chunk    *int   `help:"Chunk duration in seconds for the streaming decode."`
	Timeout  *int64 `help:"Per-stream timeout in milliseconds."`

	Config  string `help:"Path to a YAML configuration file." type:"path"`
	Version bool   `help:"Show version information."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("ffaudio"),
		kong.Description("Decode any media file to 16 kHz mono WAV via ffmpeg."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)

	if CLI.Version {
		fmt.Println("ffaudio", version)
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	// ── Configuration ─────────────────────────────────────────────────────────
	cfg := &config.Config{}
	if CLI.Config != "" {
		var err error
		cfg, err = config.Load(CLI.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ffaudio: %v\n", err)
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.LogLevel))

	// ── Telemetry ─────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "ffaudio",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	// ── Decode ────────────────────────────────────────────────────────────────
	var decOpts []ffaudio.DecoderOption
	if cfg.FFmpegPath != "" {
		decOpts = append(decOpts, ffaudio.WithFFmpegPath(cfg.FFmpegPath))
	}
	dec := ffaudio.New(decOpts...)

	var opts []ffaudio.Option
	if CLI.Start != nil {
		opts = append(opts, ffaudio.WithStart(*CLI.Start))
	}
	if CLI.Duration != nil {
		opts = append(opts, ffaudio.WithDuration(*CLI.Duration))
	}
	switch {
	case CLI.Chunk != nil:
		opts = append(opts, ffaudio.WithChunkDuration(*CLI.Chunk))
	case cfg.ChunkDurationSec > 0:
		opts = append(opts, ffaudio.WithChunkDuration(cfg.ChunkDurationSec))
	}
	switch {
	case CLI.Timeout != nil:
		opts = append(opts, ffaudio.WithTimeout(*CLI.Timeout))
	case cfg.TimeoutMS > 0:
		opts = append(opts, ffaudio.WithTimeout(cfg.TimeoutMS))
	}

	if err := decodeToWAV(ctx, dec, CLI.Input, CLI.Output, opts); err != nil {
		slog.Error("decode failed", "input", CLI.Input, "err", err)
		return 1
	}
	return 0
}

// decodeToWAV streams the input through the decoder and writes each chunk to
// out as 16-bit PCM WAV, keeping memory bounded regardless of input length.
func decodeToWAV(ctx context.Context, dec *ffaudio.Decoder, in, out string, opts []ffaudio.Option) error {
	stream, err := dec.Stream(ctx, in, opts...)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		stream.Close()
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, ffaudio.SampleRate, 16, ffaudio.Channels, 1)

	var total int
	for chunk, err := range stream.Chunks() {
		if err != nil {
			return err
		}
		if err := enc.Write(intBuffer(chunk)); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		total += len(chunk)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalise wav: %w", err)
	}

	slog.Info("decoded", "input", in, "output", out, "samples", total)
	return nil
}

// intBuffer converts normalised float32 samples to a 16-bit int buffer for
// the WAV encoder, clamping anything outside [-1.0, 1.0].
func intBuffer(samples []float32) *goaudio.IntBuffer {
	data := make([]int, len(samples))
	for i, s := range samples {
		v := int(math.Round(float64(s) * 32767))
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		data[i] = v
	}
	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: ffaudio.Channels, SampleRate: ffaudio.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

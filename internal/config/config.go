// Package config provides the configuration schema and loader for the
// ffaudio command-line tool.
package config

// LogLevel controls log verbosity for the ffaudio tool.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for the ffaudio tool.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// FFmpegPath is the ffmpeg executable to invoke. Empty means "ffmpeg"
	// resolved via PATH.
	FFmpegPath string `yaml:"ffmpeg_path"`

	// ChunkDurationSec overrides the streamed chunk duration in seconds.
	// Zero keeps the library default.
	ChunkDurationSec int `yaml:"chunk_duration_sec"`

	// TimeoutMS overrides the segment-read timeout in milliseconds.
	// Zero keeps the library default.
	TimeoutMS int64 `yaml:"timeout_ms"`

	// LogLevel controls verbosity. Empty means "info".
	LogLevel LogLevel `yaml:"log_level"`
}

package ffaudio

import (
	"errors"
	"testing"
)

var testDefaults = Defaults{ChunkDurationSec: 1200, TimeoutMS: 300_000}

func TestNewRequestEmptyPath(t *testing.T) {
	for _, path := range []string{"", "   "} {
		_, err := newRequest(path, testDefaults, true, nil)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("path %q: got %v, want ErrInvalidParameter", path, err)
		}
	}
}

func TestNewRequestNormalisation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want Request
	}{
		{
			name: "no options reads whole file",
			want: Request{FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 1200},
		},
		{
			name: "start and duration kept",
			opts: []Option{WithStart(10_000), WithDuration(5_000)},
			want: Request{
				FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 1200,
				StartMS: 10_000, HasStart: true, DurationMS: 5_000, HasDuration: true,
			},
		},
		{
			name: "zero start is a real offset",
			opts: []Option{WithStart(0)},
			want: Request{
				FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 1200,
				StartMS: 0, HasStart: true,
			},
		},
		{
			name: "negative start treated as absent",
			opts: []Option{WithStart(-100)},
			want: Request{FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 1200},
		},
		{
			name: "non-positive duration treated as absent",
			opts: []Option{WithDuration(0)},
			want: Request{FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 1200},
		},
		{
			name: "non-positive timeout reset to default",
			opts: []Option{WithTimeout(-1)},
			want: Request{FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 1200},
		},
		{
			name: "explicit timeout kept",
			opts: []Option{WithTimeout(1)},
			want: Request{FilePath: "a.mp4", TimeoutMS: 1, ChunkDurationSec: 1200},
		},
		{
			name: "non-positive chunk duration reset to default",
			opts: []Option{WithChunkDuration(0)},
			want: Request{FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 1200},
		},
		{
			name: "explicit chunk duration kept",
			opts: []Option{WithChunkDuration(30)},
			want: Request{FilePath: "a.mp4", TimeoutMS: 300_000, ChunkDurationSec: 30},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newRequest("a.mp4", testDefaults, true, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewRequestNoTimeoutDefault(t *testing.T) {
	got, err := newRequest("a.mp4", testDefaults, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TimeoutMS != 0 {
		t.Errorf("got timeout %d, want 0 (no deadline)", got.TimeoutMS)
	}
}

func TestBudgetSamples(t *testing.T) {
	tests := []struct {
		durationMS int64
		has        bool
		want       int64
	}{
		{has: false, want: -1},
		{durationMS: 1000, has: true, want: 16_000},
		{durationMS: 5000, has: true, want: 80_000},
		{durationMS: 1, has: true, want: 16},
		// Shorter than one sample period rounds to zero samples.
		{durationMS: 0, has: false, want: -1},
	}
	for _, tt := range tests {
		r := Request{DurationMS: tt.durationMS, HasDuration: tt.has}
		if got := r.budgetSamples(); got != tt.want {
			t.Errorf("budgetSamples(%d, has=%v) = %d, want %d", tt.durationMS, tt.has, got, tt.want)
		}
	}
}

package ffaudio

import (
	"slices"
	"testing"
)

func TestBuildArgsWholeFile(t *testing.T) {
	req := Request{FilePath: "/media/talk.mp4"}
	got := buildArgs(req)
	want := []string{
		"-v", "error",
		"-i", "/media/talk.mp4",
		"-vn", "-sn", "-dn",
		"-ar", "16000",
		"-ac", "1",
		"-f", "f32le",
		"-",
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBuildArgsBoundedRange(t *testing.T) {
	req := Request{
		FilePath: "talk.mkv",
		StartMS:  10_000, HasStart: true,
		DurationMS: 5_500, HasDuration: true,
	}
	got := buildArgs(req)
	want := []string{
		"-v", "error",
		"-ss", "10",
		"-t", "5.5",
		"-i", "talk.mkv",
		"-vn", "-sn", "-dn",
		"-ar", "16000",
		"-ac", "1",
		"-f", "f32le",
		"-",
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// Seeking must be configured as input seeking: -ss before -i.
func TestBuildArgsSeekPrecedesInput(t *testing.T) {
	req := Request{FilePath: "x.wav", StartMS: 250, HasStart: true}
	args := buildArgs(req)
	ss := slices.Index(args, "-ss")
	in := slices.Index(args, "-i")
	if ss == -1 || in == -1 || ss > in {
		t.Fatalf("want -ss before -i, got %v", args)
	}
	if args[ss+1] != "0.25" {
		t.Errorf("got seek %q, want \"0.25\"", args[ss+1])
	}
	if slices.Contains(args, "-t") {
		t.Errorf("unexpected -t flag without duration: %v", args)
	}
}

func TestMsToSeconds(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0"},
		{1, "0.001"},
		{500, "0.5"},
		{1000, "1"},
		{10_000, "10"},
		{3_600_123, "3600.123"},
	}
	for _, tt := range tests {
		if got := msToSeconds(tt.ms); got != tt.want {
			t.Errorf("msToSeconds(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

package ytdlp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aquastream/transcriptd/internal/logger"
)

// failingClient uses a binary that always exits non-zero, mimicking yt-dlp
// on a video without the requested track. The artifact scan decides.
func failingClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(Config{Binary: "false"}, logger.NewDefault("test"))
}

func TestFetchSubtitlesReturnsArtifactsDespiteExitCode(t *testing.T) {
	dir := t.TempDir()
	vtt := filepath.Join(dir, "subs.en.vtt")
	if err := os.WriteFile(vtt, []byte("WEBVTT\n"), 0o644); err != nil {
		t.Fatalf("write vtt: %v", err)
	}

	files, err := failingClient(t).FetchManualSubtitles(context.Background(), "https://youtu.be/abc", dir)
	if err != nil {
		t.Fatalf("FetchManualSubtitles: %v", err)
	}
	if len(files) != 1 || files[0] != vtt {
		t.Fatalf("files = %v, want [%s]", files, vtt)
	}
}

func TestFetchSubtitlesEmptyDir(t *testing.T) {
	files, err := failingClient(t).FetchAutoSubtitles(context.Background(), "https://youtu.be/abc", t.TempDir())
	if err != nil {
		t.Fatalf("FetchAutoSubtitles: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("files = %v, want none", files)
	}
}

func TestExtractAudioNoArtifact(t *testing.T) {
	path, err := failingClient(t).ExtractAudio(context.Background(), "https://youtu.be/abc", t.TempDir())
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if path != "" {
		t.Fatalf("path = %q, want empty", path)
	}
}

func TestExtractAudioPicksFirstSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"audio_b.mp3", "audio_a.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("mp3"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	path, err := failingClient(t).ExtractAudio(context.Background(), "https://youtu.be/abc", dir)
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if filepath.Base(path) != "audio_a.mp3" {
		t.Fatalf("path = %q, want audio_a.mp3 first", path)
	}
}

func TestWithMatchFilter(t *testing.T) {
	c := NewClient(Config{MinDurationSeconds: 60}, logger.NewDefault("test"))
	args := c.withMatchFilter([]string{"--skip-download"})

	if args[0] != "--match-filter" || args[1] != "duration >= 60" {
		t.Fatalf("args = %v", args)
	}
	if args[2] != "--skip-download" {
		t.Fatalf("original args not preserved: %v", args)
	}

	c = NewClient(Config{}, logger.NewDefault("test"))
	args = c.withMatchFilter([]string{"--skip-download"})
	if len(args) != 1 {
		t.Fatalf("filter added when disabled: %v", args)
	}
}

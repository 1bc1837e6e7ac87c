// Package ytdlp drives the yt-dlp binary to fetch caption tracks and
// extract audio for a video URL. All artifacts are written into a
// caller-provided working directory.
package ytdlp

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/aquastream/transcriptd/internal/logger"
	"github.com/aquastream/transcriptd/internal/process"
)

// Config configures the yt-dlp client.
type Config struct {
	// Binary is the yt-dlp executable (resolved via PATH).
	Binary string `yaml:"binary" mapstructure:"binary"`
	// Timeout bounds a single yt-dlp invocation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MinDurationSeconds skips videos shorter than this. Zero disables
	// the filter. Applied by yt-dlp itself via --match-filter.
	MinDurationSeconds int `yaml:"min_duration_seconds" mapstructure:"min_duration_seconds"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = "yt-dlp"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Minute
	}
}

// Client invokes yt-dlp as a subprocess.
type Client struct {
	cfg Config
	log *logger.Logger
}

// NewClient creates a yt-dlp client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	cfg.ApplyDefaults()
	return &Client{cfg: cfg, log: log.WithComponent("ytdlp")}
}

// FetchManualSubtitles downloads human-authored caption tracks for url into
// dir and returns the resulting .vtt files, sorted. An empty slice with a
// nil error means the video has no manual captions.
func (c *Client) FetchManualSubtitles(ctx context.Context, url, dir string) ([]string, error) {
	return c.fetchSubtitles(ctx, url, dir, "--write-sub")
}

// FetchAutoSubtitles downloads machine-generated caption tracks for url
// into dir and returns the resulting .vtt files, sorted.
func (c *Client) FetchAutoSubtitles(ctx context.Context, url, dir string) ([]string, error) {
	return c.fetchSubtitles(ctx, url, dir, "--write-auto-sub")
}

// ExtractAudio downloads the audio track of url into dir as mp3 and returns
// its path. An empty path with a nil error means no audio artifact resulted.
func (c *Client) ExtractAudio(ctx context.Context, url, dir string) (string, error) {
	args := c.withMatchFilter([]string{
		"-x",
		"--audio-format", "mp3",
		"--output", filepath.Join(dir, "audio_%(id)s.%(ext)s"),
		url,
	})

	if err := c.run(ctx, args); err != nil {
		c.log.Warn("Audio extraction failed", logger.ErrorFields("extract_audio", err))
	}

	files, err := globSorted(dir, "*.mp3")
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}
	return files[0], nil
}

func (c *Client) fetchSubtitles(ctx context.Context, url, dir, subFlag string) ([]string, error) {
	args := c.withMatchFilter([]string{
		subFlag,
		"--skip-download",
		"--output", filepath.Join(dir, "subs"),
		url,
	})

	// yt-dlp exits non-zero for videos without the requested track; the
	// authoritative signal is whether any .vtt file was produced.
	if err := c.run(ctx, args); err != nil {
		c.log.Debug("Subtitle fetch exited with error", logger.ErrorFields("fetch_subtitles", err))
	}

	return globSorted(dir, "*.vtt")
}

func (c *Client) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary: c.cfg.Binary,
		Args:   args,
	})
	if err != nil {
		if result != nil && len(result.Stderr) > 0 {
			return fmt.Errorf("%w: %s", err, tail(result.Stderr, 512))
		}
		return err
	}
	return nil
}

func (c *Client) withMatchFilter(args []string) []string {
	if c.cfg.MinDurationSeconds <= 0 {
		return args
	}
	filter := fmt.Sprintf("duration >= %d", c.cfg.MinDurationSeconds)
	return append([]string{"--match-filter", filter}, args...)
}

func globSorted(dir, pattern string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}

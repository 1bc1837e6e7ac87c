package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/aquastream/transcriptd/internal/job"
	"github.com/aquastream/transcriptd/internal/subtitle"
	"github.com/aquastream/transcriptd/internal/transcription"
)

// Fetcher is the external acquisition service the strategies drive.
// All artifacts land in the directory the caller passes.
type Fetcher interface {
	// FetchManualSubtitles returns human-authored caption files, or an
	// empty slice when the video has none.
	FetchManualSubtitles(ctx context.Context, url, dir string) ([]string, error)

	// FetchAutoSubtitles returns machine-generated caption files, or an
	// empty slice when the video has none.
	FetchAutoSubtitles(ctx context.Context, url, dir string) ([]string, error)

	// ExtractAudio returns the path of the extracted audio file, or an
	// empty path when no audio artifact resulted.
	ExtractAudio(ctx context.Context, url, dir string) (string, error)
}

// captionFetch is the shape shared by the two caption strategies.
type captionFetch func(ctx context.Context, url, dir string) ([]string, error)

// captionStrategy fetches caption tracks and normalizes the first one.
type captionStrategy struct {
	tag   string
	fetch captionFetch
}

// ManualCaptions is the cheapest, most authoritative strategy: fetch
// human-authored caption tracks.
func ManualCaptions(f Fetcher) Strategy {
	return &captionStrategy{tag: job.SourceManual, fetch: f.FetchManualSubtitles}
}

// AutoCaptions fetches platform-generated caption tracks.
func AutoCaptions(f Fetcher) Strategy {
	return &captionStrategy{tag: job.SourceAuto, fetch: f.FetchAutoSubtitles}
}

func (s *captionStrategy) Tag() string { return s.tag }

func (s *captionStrategy) Attempt(ctx context.Context, url, workDir string) (string, bool, error) {
	files, err := s.fetch(ctx, url, workDir)
	if err != nil {
		return "", false, err
	}
	if len(files) == 0 {
		return "", false, nil
	}

	raw, err := os.ReadFile(files[0])
	if err != nil {
		return "", false, fmt.Errorf("read caption file: %w", err)
	}
	return subtitle.VTTToPlainText(string(raw)), true, nil
}

// speechStrategy extracts the audio track and runs speech recognition.
// It is the most expensive stage and terminal: no audio artifact means the
// chain has nothing left to try.
type speechStrategy struct {
	fetcher     Fetcher
	transcriber transcription.Provider
}

// SpeechRecognition builds the recognition fallback over the given
// acquisition service and transcription backend.
func SpeechRecognition(f Fetcher, t transcription.Provider) Strategy {
	return &speechStrategy{fetcher: f, transcriber: t}
}

func (s *speechStrategy) Tag() string { return job.SourceWhisper }

func (s *speechStrategy) Attempt(ctx context.Context, url, workDir string) (string, bool, error) {
	audioPath, err := s.fetcher.ExtractAudio(ctx, url, workDir)
	if err != nil {
		return "", false, err
	}
	if audioPath == "" {
		return "", false, ErrNoTranscript
	}

	resp, err := s.transcriber.Transcribe(ctx, transcription.Request{AudioPath: audioPath})
	if err != nil {
		return "", false, err
	}

	segments := make([]subtitle.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = subtitle.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	return subtitle.JoinSegments(segments), true, nil
}

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aquastream/transcriptd/internal/logger"
	"github.com/aquastream/transcriptd/internal/transcription"
)

const testVTT = "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\nhello from captions\n"

// fakeFetcher scripts the acquisition calls and counts invocations.
type fakeFetcher struct {
	manualFiles []string
	manualErr   error
	autoFiles   []string
	autoErr     error
	audioPath   string
	audioErr    error

	manualCalls int
	autoCalls   int
	audioCalls  int

	// writeVTT, when set, materializes a caption file in dir before
	// returning it, so the strategy has something to read.
	writeVTT bool
}

func (f *fakeFetcher) FetchManualSubtitles(_ context.Context, _, dir string) ([]string, error) {
	f.manualCalls++
	if f.manualErr != nil {
		return nil, f.manualErr
	}
	return f.materialize(dir, f.manualFiles)
}

func (f *fakeFetcher) FetchAutoSubtitles(_ context.Context, _, dir string) ([]string, error) {
	f.autoCalls++
	if f.autoErr != nil {
		return nil, f.autoErr
	}
	return f.materialize(dir, f.autoFiles)
}

func (f *fakeFetcher) ExtractAudio(_ context.Context, _, dir string) (string, error) {
	f.audioCalls++
	if f.audioErr != nil {
		return "", f.audioErr
	}
	if f.audioPath == "" {
		return "", nil
	}
	path := filepath.Join(dir, f.audioPath)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeFetcher) materialize(dir string, names []string) ([]string, error) {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if f.writeVTT {
			if err := os.WriteFile(path, []byte(testVTT), 0o644); err != nil {
				return nil, err
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// fakeProvider is a scripted transcription backend.
type fakeProvider struct {
	resp  *transcription.Response
	err   error
	calls int
}

func (p *fakeProvider) Name() string                       { return "fake" }
func (p *fakeProvider) IsAvailable(_ context.Context) bool { return true }

func (p *fakeProvider) Transcribe(_ context.Context, _ transcription.Request) (*transcription.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func newTestChain(t *testing.T, f *fakeFetcher, p *fakeProvider) *Chain {
	t.Helper()
	log := logger.NewDefault("test")
	return NewChain(Config{WorkDir: t.TempDir()}, log,
		ManualCaptions(f),
		AutoCaptions(f),
		SpeechRecognition(f, p),
	)
}

func TestChainManualCaptionsWin(t *testing.T) {
	fetcher := &fakeFetcher{manualFiles: []string{"subs.en.vtt"}, writeVTT: true}
	provider := &fakeProvider{}
	chain := newTestChain(t, fetcher, provider)

	result, err := chain.Run(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Source != "manual" {
		t.Fatalf("Source = %q, want %q", result.Source, "manual")
	}
	if result.Transcript != "hello from captions" {
		t.Fatalf("Transcript = %q", result.Transcript)
	}
	if fetcher.autoCalls != 0 || fetcher.audioCalls != 0 {
		t.Fatalf("later stages invoked: auto=%d audio=%d", fetcher.autoCalls, fetcher.audioCalls)
	}
}

func TestChainFallsBackToAutoCaptions(t *testing.T) {
	fetcher := &fakeFetcher{autoFiles: []string{"subs.en.vtt"}, writeVTT: true}
	provider := &fakeProvider{}
	chain := newTestChain(t, fetcher, provider)

	result, err := chain.Run(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Source != "auto" {
		t.Fatalf("Source = %q, want %q", result.Source, "auto")
	}
	if fetcher.manualCalls != 1 {
		t.Fatalf("manualCalls = %d, want 1", fetcher.manualCalls)
	}
	if fetcher.audioCalls != 0 {
		t.Fatalf("speech stage invoked after caption success")
	}
}

func TestChainFallsBackToSpeechRecognition(t *testing.T) {
	fetcher := &fakeFetcher{audioPath: "audio_abc.mp3"}
	provider := &fakeProvider{resp: &transcription.Response{
		Segments: []transcription.Segment{
			{Start: 0, End: 1, Text: " whisper "},
			{Start: 1, End: 2, Text: "fallback line"},
		},
	}}
	chain := newTestChain(t, fetcher, provider)

	result, err := chain.Run(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Source != "whisper" {
		t.Fatalf("Source = %q, want %q", result.Source, "whisper")
	}
	if result.Transcript != "whisper\nfallback line" {
		t.Fatalf("Transcript = %q", result.Transcript)
	}
	if provider.calls != 1 {
		t.Fatalf("provider.calls = %d, want 1", provider.calls)
	}
}

func TestChainCaptionStageErrorAdvances(t *testing.T) {
	fetcher := &fakeFetcher{
		manualErr: errors.New("fetch blew up"),
		autoFiles: []string{"subs.en.vtt"},
		writeVTT:  true,
	}
	chain := newTestChain(t, fetcher, &fakeProvider{})

	result, err := chain.Run(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Source != "auto" {
		t.Fatalf("Source = %q, want %q", result.Source, "auto")
	}
}

func TestChainExhaustedReturnsNoTranscript(t *testing.T) {
	fetcher := &fakeFetcher{}
	chain := newTestChain(t, fetcher, &fakeProvider{})

	_, err := chain.Run(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("err = %v, want ErrNoTranscript", err)
	}
	if fetcher.manualCalls != 1 || fetcher.autoCalls != 1 || fetcher.audioCalls != 1 {
		t.Fatalf("call counts = %d/%d/%d, want 1/1/1",
			fetcher.manualCalls, fetcher.autoCalls, fetcher.audioCalls)
	}
}

func TestChainFinalStageErrorIsTerminal(t *testing.T) {
	wantErr := errors.New("engine exploded")
	fetcher := &fakeFetcher{audioPath: "audio_abc.mp3"}
	provider := &fakeProvider{err: wantErr}
	chain := newTestChain(t, fetcher, provider)

	_, err := chain.Run(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestChainCleansUpWorkDir(t *testing.T) {
	root := t.TempDir()
	log := logger.NewDefault("test")

	run := func(fetcher *fakeFetcher) {
		chain := NewChain(Config{WorkDir: root}, log,
			ManualCaptions(fetcher),
			AutoCaptions(fetcher),
			SpeechRecognition(fetcher, &fakeProvider{}),
		)
		_, _ = chain.Run(context.Background(), "https://youtu.be/abc")
	}

	// Success path and exhaustion path both remove the per-job directory.
	run(&fakeFetcher{manualFiles: []string{"subs.en.vtt"}, writeVTT: true})
	run(&fakeFetcher{})

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("work dir not cleaned up, %d entries remain", len(entries))
	}
}

// Package whisper implements transcription.Provider against a
// faster-whisper HTTP sidecar.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aquastream/transcriptd/internal/transcription"
)

const (
	// ProviderName is the name reported by this provider.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperTimeout = 15 * time.Minute

	// modelManifest is the file that marks a directory as a usable local
	// model, mirroring the faster-whisper model layout.
	modelManifest = "model.bin"
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL string `yaml:"url" mapstructure:"url"`
	// Model is either a named size tier (e.g. "base", "small") or a path
	// to a local model directory. A directory containing model.bin wins
	// over a tier of the same name, so a relative path colliding with a
	// tier name silently selects the local model.
	Model string `yaml:"model" mapstructure:"model"`
	// DownloadRoot is the cache directory for named-tier model downloads.
	DownloadRoot string        `yaml:"download_root" mapstructure:"download_root"`
	ComputeType  string        `yaml:"compute_type,omitempty" mapstructure:"compute_type"`
	Language     string        `yaml:"language,omitempty" mapstructure:"language"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultWhisperTimeout
	}
}

// ResolvedModel is the outcome of the model-selection heuristic.
type ResolvedModel struct {
	// Model is the tier name or the absolute local directory path.
	Model string
	// LocalOnly is true when Model is a local directory; the engine must
	// not attempt a download.
	LocalOnly bool
	// DownloadRoot is the cache directory for tier downloads. Empty when
	// LocalOnly is true.
	DownloadRoot string
}

// ResolveModel applies the configured model heuristic: the value is treated
// as a local model directory only if it exists and contains the model
// manifest file; otherwise it is a named tier to be fetched and cached.
func (c Config) ResolveModel() ResolvedModel {
	path := c.Model
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		if _, err := os.Stat(filepath.Join(path, modelManifest)); err == nil {
			return ResolvedModel{Model: path, LocalOnly: true}
		}
	}

	return ResolvedModel{Model: c.Model, DownloadRoot: c.DownloadRoot}
}

// Provider implements transcription.Provider using a faster-whisper HTTP
// sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Transcribe sends an audio file to the Whisper sidecar and returns the
// transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	model := p.cfg.ResolveModel()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", model.Model)
	_ = writer.WriteField("local_files_only", strconv.FormatBool(model.LocalOnly))
	if model.DownloadRoot != "" {
		_ = writer.WriteField("download_root", model.DownloadRoot)
	}
	if p.cfg.ComputeType != "" {
		_ = writer.WriteField("compute_type", p.cfg.ComputeType)
	}
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	return toResponse(&result), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toResponse(resp *whisperResponse) *transcription.Response {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}

	return &transcription.Response{
		Text:     resp.Text,
		Segments: segments,
		Language: resp.Language,
	}
}

package stt

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "voicenotes/internal/errors"
)

const (
	defaultWhisperModel   = "whisper-1"
	defaultWhisperTimeout = 60 * time.Second
)

// WhisperConfig holds configuration for the Whisper transcription provider.
type WhisperConfig struct {
	APIKey  string
	BaseURL string // optional override, used by tests and proxies
	Model   string
	Timeout time.Duration
}

// WhisperProvider implements STT using the OpenAI audio transcription API.
type WhisperProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewWhisperProvider creates a new Whisper STT provider.
func NewWhisperProvider(cfg WhisperConfig) *WhisperProvider {
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &WhisperProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Name returns the provider name
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// Transcribe sends the audio file to the transcription API requesting a
// verbose structured reply and blocks until it resolves or times out.
// No retries are performed; every failure is classified and reported.
func (p *WhisperProvider) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, apperrors.Validation("audio file not found or unreadable").WithCause(err)
	}
	if info.Size() == 0 {
		return nil, apperrors.Validation("audio file is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, apperrors.FromOpenAI(err, "transcription")
	}

	language := strings.TrimSpace(resp.Language)
	if language == "" {
		language = "unknown"
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, Segment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	return &Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: language,
		Duration: resp.Duration,
		Segments: segments,
	}, nil
}

// Package ai classifies the emotion and tone of a transcript using a
// chat-completion model. Classification is best-effort: unparsable model
// output degrades to a fixed neutral fallback and is never surfaced as an
// error. Only genuine call failures (auth, rate limit, transport) are
// returned to the caller.
package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	apperrors "voicenotes/internal/errors"
)

const (
	defaultChatModel = "gpt-4o-mini"
	defaultTimeout   = 30 * time.Second

	// Low temperature for deterministic classification, bounded reply length.
	analysisTemperature = 0.3
	analysisMaxTokens   = 150
)

// Analysis is the emotion/tone classification for one transcript. All three
// fields are always populated, from the model reply or from the fallback.
type Analysis struct {
	Emotion string `json:"emotion"`
	Tone    string `json:"tone"`
	Reason  string `json:"reason"`
}

// Analyzer defines the interface for emotion analysis backends.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (*Analysis, error)
}

// Fallback returns the fixed neutral analysis substituted when the model
// reply cannot be used.
func Fallback() *Analysis {
	return &Analysis{
		Emotion: "neutral",
		Tone:    "neutral",
		Reason:  "Unable to determine specific emotion or tone from the transcription",
	}
}

// Config holds configuration for the OpenAI emotion analyzer.
type Config struct {
	APIKey  string
	BaseURL string // optional override, used by tests and proxies
	Model   string
	Timeout time.Duration
}

// OpenAIAnalyzer implements Analyzer using the OpenAI chat completion API.
type OpenAIAnalyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *logrus.Entry
}

// NewOpenAIAnalyzer creates a new emotion analyzer.
func NewOpenAIAnalyzer(cfg Config, log *logrus.Entry) *OpenAIAnalyzer {
	if cfg.Model == "" {
		cfg.Model = defaultChatModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIAnalyzer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     log,
	}
}

// Analyze classifies the transcript. Empty or whitespace-only text
// short-circuits to a fallback without calling upstream.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, transcript string) (*Analysis, error) {
	if strings.TrimSpace(transcript) == "" {
		return &Analysis{
			Emotion: "neutral",
			Tone:    "neutral",
			Reason:  "No speech content to analyze",
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildEmotionPrompt(transcript),
			},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		return nil, apperrors.FromOpenAI(err, "emotion analysis")
	}

	if len(resp.Choices) == 0 {
		if a.log != nil {
			a.log.Warn("emotion model returned no choices, using fallback")
		}
		return Fallback(), nil
	}

	return a.parseReply(resp.Choices[0].Message.Content), nil
}

// parseReply extracts the JSON object from the raw model reply. Parse
// failures and missing fields degrade to fallback values; they never
// propagate to the caller.
func (a *OpenAIAnalyzer) parseReply(content string) *Analysis {
	var parsed Analysis
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		if a.log != nil {
			a.log.WithField("error", err.Error()).Warn("failed to parse emotion reply as JSON, using fallback")
		}
		return Fallback()
	}

	fallback := Fallback()
	result := &Analysis{
		Emotion: strings.TrimSpace(parsed.Emotion),
		Tone:    strings.TrimSpace(parsed.Tone),
		Reason:  strings.TrimSpace(parsed.Reason),
	}
	if result.Emotion == "" {
		result.Emotion = fallback.Emotion
	}
	if result.Tone == "" {
		result.Tone = fallback.Tone
	}
	if result.Reason == "" {
		result.Reason = "Analysis completed but specific details unavailable"
	}
	return result
}

// extractJSON pulls a JSON object from model output that may wrap it in
// markdown fences or prose despite instructions.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// First { to last }
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

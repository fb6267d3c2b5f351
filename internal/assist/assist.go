package assist

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```[a-zA-Z]*[ \\t]*\\n?")

// interface for a single-turn text completion
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AI service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Model   string
	BaseURL string // OpenAI-compatible endpoint (OpenRouter, Groq)
}

// creates Completer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Completer, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAICompleter(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicCompleter(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported assist provider: %s", provider)
	}
}

// ParseProvider maps a config or flag value to a Provider.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported assist provider: %s", name)
	}
}

// Assistant runs the lyric tasks on top of a Completer.
type Assistant struct {
	completer Completer
}

func New(completer Completer) *Assistant {
	return &Assistant{completer: completer}
}

// Phonetic asks for an LRC block pairing every lyric line with a sung
// phonetic rendering at the same timestamp.
func (a *Assistant) Phonetic(ctx context.Context, lrc string) (string, error) {
	if strings.TrimSpace(lrc) == "" {
		return "", fmt.Errorf("no lyrics to transcribe phonetically")
	}

	out, err := a.completer.Complete(ctx, BuildPhoneticPrompt(lrc))
	if err != nil {
		return "", fmt.Errorf("phonetic generation failed: %w", err)
	}

	return cleanResponse(out), nil
}

// Correct fixes transcription errors in srt against reference lyrics.
func (a *Assistant) Correct(ctx context.Context, srt, reference string) (*Correction, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("reference lyrics are required")
	}

	out, err := a.completer.Complete(ctx, BuildCorrectionPrompt(srt, reference))
	if err != nil {
		return nil, fmt.Errorf("lyrics correction failed: %w", err)
	}

	return checkCorrection(out)
}

// Polish cleans up spelling and punctuation in srt. notes may be empty.
func (a *Assistant) Polish(ctx context.Context, srt, notes string) (*Correction, error) {
	out, err := a.completer.Complete(ctx, BuildPolishPrompt(srt, notes))
	if err != nil {
		return nil, fmt.Errorf("lyrics polish failed: %w", err)
	}

	return checkCorrection(out)
}

func checkCorrection(response string) (*Correction, error) {
	correction := parseCorrection(response)
	if correction.SRT == "" {
		return nil, fmt.Errorf("no corrected SRT in response (response: %s)", truncateString(response, 200))
	}
	return correction, nil
}

// removes markdown code fences from the response
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = fencePattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

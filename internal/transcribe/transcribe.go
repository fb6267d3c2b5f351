package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/kara/internal/lyrics"
)

// transcription result
type Result struct {
	SRT      string // canonical SRT text
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(
		ctx context.Context,
		audioPath string,
		song lyrics.Metadata,
	) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

// transcription options
type Options struct {
	Language  string // Source language of audio
	Model     string
	ServerURL string // whisper server base URL
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderWhisper:
		return NewWhisperServer(opts.ServerURL, nil)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// ParseProvider maps a config or flag value to a Provider.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderWhisper, ProviderOpenAI, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", name)
	}
}

// segment of a model response, times in seconds
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// renders segments as canonical SRT, skipping blank text
func segmentsToSRT(segments []transcriptSegment) string {
	cues := make([]lyrics.RawCue, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		end := seg.End
		if end < seg.Start {
			end = seg.Start
		}
		cues = append(cues, lyrics.RawCue{Start: seg.Start, End: end, Text: text})
	}
	return lyrics.FormatCues(cues)
}

// songContext describes the song for model prompts
func songContext(song lyrics.Metadata) string {
	switch {
	case song.Title != "" && song.Artist != "":
		return fmt.Sprintf("The song is %q by %s.", song.Title, song.Artist)
	case song.Title != "":
		return fmt.Sprintf("The song is %q.", song.Title)
	case song.Artist != "":
		return fmt.Sprintf("The song is by %s.", song.Artist)
	}
	return ""
}

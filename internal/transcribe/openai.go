package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/kara/internal/audio"
	"github.com/mgpai22/kara/internal/lyrics"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string              `json:"text"`
	Segments []transcriptSegment `json:"segments"`
	Language string              `json:"language"`
	Duration float64             `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file into SRT
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
	song lyrics.Metadata,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	// best effort; only used when the response has no segments
	duration, _ := audio.GetDuration(ctx, audioPath)

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if prompt := t.buildPrompt(song); prompt != "" {
		params.Prompt = openai.String(prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return &Result{
		SRT:      t.responseSRT(resp.RawJSON(), resp.Text, duration),
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// renders a verbose_json response as SRT. An unreadable response becomes one
// cue holding the plain text for the whole track.
func (t *OpenAITranscriber) responseSRT(rawJSON, text string, duration time.Duration) string {
	segments, err := t.parseVerboseJSONResponse(rawJSON, duration)
	if err != nil {
		segments = []transcriptSegment{{End: duration.Seconds(), Text: text}}
	}
	return segmentsToSRT(segments)
}

// whisper treats the prompt as preceding context
func (t *OpenAITranscriber) buildPrompt(song lyrics.Metadata) string {
	ctx := songContext(song)
	if ctx == "" {
		return ""
	}
	return ctx + " Transcribe the sung lyrics."
}

func (t *OpenAITranscriber) parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration time.Duration,
) ([]transcriptSegment, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(verboseResp.Segments) == 0 {
		if strings.TrimSpace(verboseResp.Text) == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		dur := fallbackDuration.Seconds()
		if verboseResp.Duration > 0 {
			dur = verboseResp.Duration
		}
		return []transcriptSegment{{
			Start: 0,
			End:   dur,
			Text:  strings.TrimSpace(verboseResp.Text),
		}}, nil
	}

	segments := make([]transcriptSegment, 0, len(verboseResp.Segments))
	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, transcriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}

	return segments, nil
}

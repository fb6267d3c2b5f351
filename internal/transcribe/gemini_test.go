package transcribe

import (
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/mgpai22/kara/internal/lyrics"
)

func geminiResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGeminiResponseSRT(t *testing.T) {
	transcriber := &GeminiTranscriber{}

	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name: "fenced array split across parts",
			parts: []string{
				"```json\n[{\"start\": 12.0, \"end\": 14.5, \"text\": \"Hello darkness\"},",
				" {\"start\": 14.5, \"end\": 17.0, \"text\": \"my old friend\"}]\n```",
			},
			want: "1\n00:00:12,000 --> 00:00:14,500\nHello darkness\n\n" +
				"2\n00:00:14,500 --> 00:00:17,000\nmy old friend\n\n",
		},
		{
			name: "prose around a wrapper object",
			parts: []string{
				"Here is the transcript:\n{\"lyrics\": [" +
					"{\"start\": 1, \"end\": 0.5, \"text\": \"I've come to talk\"}," +
					"{\"start\": 2, \"end\": 3, \"text\": \" \"}," +
					"{\"start\": 3, \"end\": 5, \"text\": \"with you again\"}]}\nEnjoy!",
			},
			want: "1\n00:00:01,000 --> 00:00:01,000\nI've come to talk\n\n" +
				"2\n00:00:03,000 --> 00:00:05,000\nwith you again\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := transcriber.parseTranscriptionResponse(geminiResponse(tt.parts...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := segmentsToSRT(segments); got != tt.want {
				t.Errorf("SRT = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGeminiResponseErrors(t *testing.T) {
	transcriber := &GeminiTranscriber{}

	tests := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"no text":       geminiResponse(""),
		"prose only":    geminiResponse("I could not hear any vocals in this track."),
		"all zero":      geminiResponse(`[{"start": 0, "end": 0, "text": ""}]`),
	}

	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := transcriber.parseTranscriptionResponse(resp); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFindSegmentsKeyOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "known key wins over an earlier sorted key",
			input: `{"alternate": [{"start": 1, "end": 2, "text": "alt"}],
				"segments": [{"start": 1, "end": 2, "text": "main"}]}`,
			want: "main",
		},
		{
			name: "known keys are tried in priority order",
			input: `{"lines": [{"start": 1, "end": 2, "text": "from lines"}],
				"transcript": [{"start": 1, "end": 2, "text": "from transcript"}]}`,
			want: "from transcript",
		},
		{
			name: "empty known key falls through to the next",
			input: `{"segments": [],
				"data": [{"start": 1, "end": 2, "text": "from data"}]}`,
			want: "from data",
		},
		{
			name: "unknown keys are tried in sorted order",
			input: `{"zeta": [{"start": 1, "end": 2, "text": "zeta"}],
				"beta": [{"start": 1, "end": 2, "text": "beta"}]}`,
			want: "beta",
		},
		{
			name:  "nested wrapper",
			input: `{"result": {"response": {"segments": [{"start": 1, "end": 2, "text": "deep"}]}}}`,
			want:  "deep",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, ok := findSegments([]byte(tt.input), 0)
			if !ok {
				t.Fatal("no segments found")
			}
			if segments[0].Text != tt.want {
				t.Errorf("got %q, want %q", segments[0].Text, tt.want)
			}
		})
	}
}

func TestFindSegmentsDepthLimit(t *testing.T) {
	input := `{"a": {"b": {"c": {"d": {"segments": [{"start": 1, "end": 2, "text": "too deep"}]}}}}}`
	if _, ok := findSegments([]byte(input), 0); ok {
		t.Error("expected wrappers beyond the depth limit to be ignored")
	}
}

func TestBuildTranscriptionPrompt(t *testing.T) {
	transcriber := &GeminiTranscriber{options: Options{Language: "Spanish"}}

	prompt := transcriber.buildTranscriptionPrompt(lyrics.Metadata{Title: "Despacito"})
	for _, want := range []string{"JSON array", `"Despacito"`, "in Spanish"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q: %s", want, prompt)
		}
	}
}

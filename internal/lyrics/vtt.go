package lyrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
)

// ReadVTT parses WebVTT into a Timeline using each cue's start time. The
// first line of a cue is the primary text and any further lines, joined
// with a space, are its pronunciation, mirroring WriteVTT.
func ReadVTT(r io.Reader) (Timeline, error) {
	subs, err := astisub.ReadFromWebVTT(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse WebVTT: %w", err)
	}

	entries := make([]entry, 0, len(subs.Items))
	for _, item := range subs.Items {
		var parts []string
		for _, line := range item.Lines {
			if text := strings.TrimSpace(line.String()); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) == 0 {
			continue
		}
		ms := item.StartAt.Milliseconds()
		entries = append(entries, entry{ms: ms, text: parts[0]})
		if len(parts) > 1 {
			entries = append(entries, entry{ms: ms, text: strings.Join(parts[1:], " ")})
		}
	}

	return pairEntries(entries), nil
}

// WriteVTT renders a timeline as WebVTT. A pronunciation becomes the cue's
// second line.
func WriteVTT(w io.Writer, tl Timeline, cueDuration float64) error {
	if len(tl) == 0 {
		// astisub refuses to write a document without items
		_, err := io.WriteString(w, "WEBVTT\n")
		return err
	}

	subs := astisub.NewSubtitles()
	for i, line := range tl {
		lines := []astisub.Line{textLine(line.Text)}
		if line.Pronunciation != "" {
			lines = append(lines, textLine(line.Pronunciation))
		}
		subs.Items = append(subs.Items, &astisub.Item{
			Index:   i + 1,
			StartAt: toDuration(line.Time),
			EndAt:   toDuration(line.Time + cueDuration),
			Lines:   lines,
		})
	}

	if err := subs.WriteToWebVTT(w); err != nil {
		return fmt.Errorf("failed to write WebVTT: %w", err)
	}
	return nil
}

func textLine(text string) astisub.Line {
	return astisub.Line{Items: []astisub.LineItem{{Text: text}}}
}

func toDuration(seconds float64) time.Duration {
	return time.Duration(secondsToMillis(seconds)) * time.Millisecond
}

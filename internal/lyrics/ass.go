package lyrics

import (
	"fmt"
	"io"
	"strings"
)

// Advanced SubStation Alpha karaoke export
type ASSWriter struct {
	Title       string
	FontName    string
	FontSize    int
	CueDuration float64
}

func (w *ASSWriter) Write(out io.Writer, tl Timeline, meta Metadata) error {
	title := w.Title
	if meta.Title != "" {
		title = meta.Title
	}

	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, line := range tl {
		text := escapeASSText(line.Text)
		if line.Pronunciation != "" {
			text += "\\N" + escapeASSText(line.Pronunciation)
		}
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(line.Time),
			formatASSTime(line.Time+w.CueDuration),
			text))
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

// h:mm:ss.cc
func formatASSTime(seconds float64) string {
	ms := secondsToMillis(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", ms/3600000, (ms/60000)%60, (ms/1000)%60, (ms%1000)/10)
}

func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}

package lyrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCueDuration is the display duration given to each line when an SRT
// cue has to be synthesized from a timeline, which stores no end times.
const DefaultCueDuration = 3.0

var sequencePattern = regexp.MustCompile(`^\d+$`)

// RawCue is one SRT cue as scanned from text. Index is informational only.
type RawCue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// ScanCues walks SRT text and returns every cue that has both a timing line
// and at least one text line. Multi-line cue text is joined with a single
// space. A blank line, or a bare number followed by a timing line, ends the
// current cue; a timing line ends any pending cue and starts a new one. A
// bare number anywhere else is cue text.
func ScanCues(text string) []RawCue {
	var (
		cues    []RawCue
		cur     RawCue
		hasTime bool
		lines   []string
		seq     int
	)

	flush := func() {
		if hasTime && len(lines) > 0 {
			cur.Text = strings.Join(lines, " ")
			cues = append(cues, cur)
		}
		cur = RawCue{}
		hasTime = false
		lines = nil
	}

	all := splitLines(text)
	if len(all) > 0 {
		all[0] = strings.TrimPrefix(all[0], "\ufeff")
	}

	for i, line := range all {
		line = strings.TrimSpace(line)

		if line == "" || isSequenceLine(all, i) {
			flush()
			if n, err := strconv.Atoi(line); err == nil {
				seq = n
			}
			continue
		}

		if start, end, ok := parseSRTRange(line); ok {
			flush()
			cur = RawCue{Index: seq, Start: start, End: end}
			hasTime = true
			continue
		}

		lines = append(lines, line)
	}
	flush()

	return cues
}

// isSequenceLine reports whether lines[i] is a cue number: digits only, with
// the next non-blank line being a timing line.
func isSequenceLine(lines []string, i int) bool {
	if !sequencePattern.MatchString(strings.TrimSpace(lines[i])) {
		return false
	}
	for _, next := range lines[i+1:] {
		next = strings.TrimSpace(next)
		if next == "" {
			continue
		}
		_, _, ok := parseSRTRange(next)
		return ok
	}
	return false
}

// ParseSRT turns SRT text into a Timeline with one line per cue at the cue's
// start time. End times are discarded.
func ParseSRT(text string) Timeline {
	cues := ScanCues(text)
	entries := make([]entry, 0, len(cues))
	for _, cue := range cues {
		entries = append(entries, entry{ms: secondsToMillis(cue.Start), text: cue.Text})
	}
	return pairEntries(entries)
}

// TimelineCues synthesizes cues from a timeline. Every cue lasts duration
// seconds from its line's time; sequence numbers start at 1.
func TimelineCues(tl Timeline, duration float64) []RawCue {
	cues := make([]RawCue, len(tl))
	for i, line := range tl {
		cues[i] = RawCue{
			Index: i + 1,
			Start: line.Time,
			End:   line.Time + duration,
			Text:  line.Text,
		}
	}
	return cues
}

// FormatCues renders cues as SRT, renumbering from 1.
func FormatCues(cues []RawCue) string {
	var sb strings.Builder
	for i, cue := range cues {
		// index (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatSRTTime(cue.Start),
			FormatSRTTime(cue.End)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

package lyrics

import "strings"

// ConvertSRTToLRC re-encodes each cue's start time as a [mm:ss.cc] tag
// followed by a space and the first text line of that cue. Cues with no text
// line before the next timing line are skipped. Hours fold into minutes.
func ConvertSRTToLRC(srt string) string {
	lines := splitLines(srt)
	var out []string

	for i, line := range lines {
		start, _, ok := parseSRTRange(strings.TrimSpace(line))
		if !ok {
			continue
		}

		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if strings.Contains(next, "-->") {
				break
			}
			if next == "" || isSequenceLine(lines, j) {
				continue
			}
			out = append(out, FormatLRCTime(start)+" "+next)
			break
		}
	}

	return strings.Join(out, "\n")
}

// ConvertLRCToSRT synthesizes an SRT document from a timeline. Each cue
// ends DefaultCueDuration seconds after it starts. Pronunciations are not
// carried over.
func ConvertLRCToSRT(tl Timeline) string {
	return FormatCues(TimelineCues(tl, DefaultCueDuration))
}

// SRTToTimeline converts SRT through its LRC rendering, so start times are
// truncated to centiseconds exactly as ConvertSRTToLRC does.
func SRTToTimeline(srt string) Timeline {
	return ParseLRC(ConvertSRTToLRC(srt))
}

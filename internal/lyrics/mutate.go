package lyrics

import "fmt"

// SwapPronunciation exchanges primary text and pronunciation on every paired
// line. Unpaired lines are copied unchanged.
func SwapPronunciation(tl Timeline) Timeline {
	out := make(Timeline, len(tl))
	for i, line := range tl {
		if line.Pronunciation != "" {
			line.Text, line.Pronunciation = line.Pronunciation, line.Text
		}
		out[i] = line
	}
	return out
}

// PhoneticReplace parses an LRC block that pairs each lyric with its
// phonetic rendering and returns it with the two members swapped, so the
// phonetic line becomes the primary one. It fails with ErrEmptyTimeline when
// nothing parses, leaving the caller's timeline in place.
func PhoneticReplace(lrc string) (Timeline, error) {
	tl := ParseLRC(lrc)
	if len(tl) == 0 {
		return nil, fmt.Errorf("phonetic replace: %w", ErrEmptyTimeline)
	}
	return SwapPronunciation(tl), nil
}

// ApplyCorrection converts a corrected SRT document into the timeline that
// replaces the current one. It fails with ErrEmptyTimeline when the document
// yields no lines.
func ApplyCorrection(correctedSRT string) (Timeline, error) {
	tl := SRTToTimeline(correctedSRT)
	if len(tl) == 0 {
		return nil, fmt.Errorf("apply correction: %w", ErrEmptyTimeline)
	}
	return tl, nil
}

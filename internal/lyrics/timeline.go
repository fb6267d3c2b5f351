package lyrics

import "errors"

// ErrEmptyTimeline is returned when text that should have produced lyric
// lines yields none.
var ErrEmptyTimeline = errors.New("no timed lyric lines found")

// TimedLine is one displayable lyric instant. Pronunciation is set only when
// two entries shared the same timestamp and were paired.
type TimedLine struct {
	Time          float64 `json:"time"`
	Text          string  `json:"text"`
	Pronunciation string  `json:"pronunciation,omitempty"`
}

// Timeline is sorted ascending by Time with no two lines sharing a time.
type Timeline []TimedLine

// song metadata carried alongside a timeline
type Metadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	By     string `json:"by,omitempty"`
	Length string `json:"length,omitempty"`
}

func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// Texts returns the primary text of every line in order.
func (tl Timeline) Texts() []string {
	texts := make([]string, len(tl))
	for i, line := range tl {
		texts[i] = line.Text
	}
	return texts
}

// Paired reports whether any line carries a pronunciation.
func (tl Timeline) Paired() bool {
	for _, line := range tl {
		if line.Pronunciation != "" {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no backing array with tl.
func (tl Timeline) Clone() Timeline {
	if tl == nil {
		return nil
	}
	out := make(Timeline, len(tl))
	copy(out, tl)
	return out
}

// Window returns the lines from index-before to index+after, clamped to the
// timeline, along with the position of index inside the returned slice.
func (tl Timeline) Window(index, before, after int) (Timeline, int) {
	if len(tl) == 0 {
		return nil, 0
	}
	if index < 0 {
		index = 0
	}
	if index >= len(tl) {
		index = len(tl) - 1
	}
	start := max(0, index-before)
	end := min(len(tl), index+after+1)
	return tl[start:end], index - start
}

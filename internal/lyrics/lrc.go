package lyrics

import (
	"regexp"
	"sort"
	"strings"
)

// text prefixes of LRC header conventions; lines starting with one of these
// are not lyric content
var headerPrefixes = []string{
	"RCLyricsBand",
	"by:",
	"ti:",
	"ar:",
	"al:",
	"lang:",
	"length:",
	"re:",
	"ve:",
}

var lrcHeaderPattern = regexp.MustCompile(`^\[(ti|ar|al|by|length):([^\]]*)\]\s*$`)

func isHeaderText(text string) bool {
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// entry is a provisional, not yet paired lyric line
type entry struct {
	ms   int64
	text string
}

// ParseLRC turns LRC text into a Timeline. A line carrying several tags
// contributes one entry per tag. Lines without a tag, with empty text, or
// with header text contribute nothing. Two entries at the same time are
// paired into text + pronunciation.
func ParseLRC(text string) Timeline {
	var entries []entry

	for i, line := range splitLines(text) {
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		tags := findLRCTags(line)
		if len(tags) == 0 {
			continue
		}

		var sb strings.Builder
		prev := 0
		for _, tag := range tags {
			sb.WriteString(line[prev:tag.start])
			prev = tag.end
		}
		sb.WriteString(line[prev:])

		lyric := strings.TrimSpace(sb.String())
		if lyric == "" || isHeaderText(lyric) {
			continue
		}

		for _, tag := range tags {
			entries = append(entries, entry{ms: tag.ts.millis(), text: lyric})
		}
	}

	return pairEntries(entries)
}

// pairEntries sorts entries by time and merges consecutive equal-time pairs.
// A third entry at the same time becomes a standalone line.
func pairEntries(entries []entry) Timeline {
	if len(entries) == 0 {
		return Timeline{}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ms < entries[j].ms
	})

	tl := make(Timeline, 0, len(entries))
	for i := 0; i < len(entries); i++ {
		cur := entries[i]
		line := TimedLine{Time: millisToSeconds(cur.ms), Text: cur.text}
		if i+1 < len(entries) && entries[i+1].ms == cur.ms {
			line.Pronunciation = entries[i+1].text
			i++
		}
		tl = append(tl, line)
	}
	return tl
}

// ParseLRCMetadata reads the ti/ar/al/by/length header tags.
func ParseLRCMetadata(text string) Metadata {
	var meta Metadata
	for _, line := range splitLines(text) {
		m := lrcHeaderPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		switch m[1] {
		case "ti":
			meta.Title = value
		case "ar":
			meta.Artist = value
		case "al":
			meta.Album = value
		case "by":
			meta.By = value
		case "length":
			meta.Length = value
		}
	}
	return meta
}

type LRCOptions struct {
	// Centiseconds selects the legacy [mm:ss.cc] tag instead of [mm:ss.ccc].
	Centiseconds bool
}

// EncodeLRC renders a timeline as LRC. A paired line is written as two lines
// with the same tag, primary first.
func EncodeLRC(tl Timeline, meta Metadata, opts LRCOptions) string {
	var sb strings.Builder

	if meta.Title != "" {
		sb.WriteString("[ti:" + meta.Title + "]\n")
	}
	if meta.Artist != "" {
		sb.WriteString("[ar:" + meta.Artist + "]\n")
	}
	if meta.Album != "" {
		sb.WriteString("[al:" + meta.Album + "]\n")
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}

	format := FormatLRCTimeMillis
	if opts.Centiseconds {
		format = FormatLRCTime
	}

	for _, line := range tl {
		tag := format(line.Time)
		sb.WriteString(tag + line.Text + "\n")
		if line.Pronunciation != "" {
			sb.WriteString(tag + line.Pronunciation + "\n")
		}
	}

	return sb.String()
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

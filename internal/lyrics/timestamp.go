package lyrics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Timestamps are decoded into whole milliseconds before conversion to
// seconds so that equal tags always compare equal as float64.

// matches a bracketed LRC tag: [mm:ss], [mm:ss.c{1,3}], [hh:mm:ss.ccc], [hh:mm:ss,ccc].
// Minutes take up to three digits so that tags written past 99 minutes
// parse back.
var lrcTagPattern = regexp.MustCompile(
	`\[(?:(\d{1,2}):)?(\d{1,3}):(\d{2})(?:([.,])(\d{1,3}))?\]`,
)

// matches an SRT timing line: hh:mm:ss,mmm --> hh:mm:ss,mmm
var srtArrowPattern = regexp.MustCompile(
	`(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})`,
)

// timestamp is the tokenized form of one encoded time value
type timestamp struct {
	hours    string
	minutes  string
	seconds  string
	sep      string
	fraction string
}

// millis resolves the fraction convention in one place: after a comma,
// exactly three digits are milliseconds; every other fraction is a decimal
// fraction of a second.
func (ts timestamp) millis() int64 {
	var h, m, s int64
	if ts.hours != "" {
		h, _ = strconv.ParseInt(ts.hours, 10, 64)
	}
	m, _ = strconv.ParseInt(ts.minutes, 10, 64)
	s, _ = strconv.ParseInt(ts.seconds, 10, 64)

	total := (h*3600+m*60+s)*1000 + fractionMillis(ts.sep, ts.fraction)
	return total
}

func fractionMillis(sep, fraction string) int64 {
	if fraction == "" {
		return 0
	}
	n, _ := strconv.ParseInt(fraction, 10, 64)
	if sep == "," && len(fraction) == 3 {
		return n
	}
	// decimal fraction: scale to three digits
	for i := len(fraction); i < 3; i++ {
		n *= 10
	}
	return n
}

func (ts timestamp) Seconds() float64 {
	return millisToSeconds(ts.millis())
}

func millisToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}

func secondsToMillis(seconds float64) int64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}

// tagMatch is one LRC tag located inside a line
type tagMatch struct {
	start, end int
	ts         timestamp
}

func findLRCTags(line string) []tagMatch {
	locs := lrcTagPattern.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	group := func(loc []int, n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return line[loc[2*n]:loc[2*n+1]]
	}
	tags := make([]tagMatch, 0, len(locs))
	for _, loc := range locs {
		tags = append(tags, tagMatch{
			start: loc[0],
			end:   loc[1],
			ts: timestamp{
				hours:    group(loc, 1),
				minutes:  group(loc, 2),
				seconds:  group(loc, 3),
				sep:      group(loc, 4),
				fraction: group(loc, 5),
			},
		})
	}
	return tags
}

// ParseTimestamp decodes one timestamp in any accepted shape. Brackets are
// optional. The second return value is false when tag is not a timestamp.
func ParseTimestamp(tag string) (float64, bool) {
	if len(tag) == 0 {
		return 0, false
	}
	if tag[0] != '[' {
		tag = "[" + tag + "]"
	}
	tags := findLRCTags(tag)
	if len(tags) != 1 || tags[0].start != 0 || tags[0].end != len(tag) {
		return 0, false
	}
	return tags[0].ts.Seconds(), true
}

// parseSRTRange extracts start and end from an SRT arrow line.
func parseSRTRange(line string) (start, end float64, ok bool) {
	m := srtArrowPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	start = timestamp{hours: m[1], minutes: m[2], seconds: m[3], sep: ",", fraction: m[4]}.Seconds()
	end = timestamp{hours: m[5], minutes: m[6], seconds: m[7], sep: ",", fraction: m[8]}.Seconds()
	return start, end, true
}

// FormatLRCTime renders seconds as the legacy [mm:ss.cc] tag. Centiseconds
// are truncated, not rounded.
func FormatLRCTime(seconds float64) string {
	ms := secondsToMillis(seconds)
	return fmt.Sprintf("[%02d:%02d.%02d]", ms/60000, (ms/1000)%60, (ms%1000)/10)
}

// FormatLRCTimeMillis renders seconds as [mm:ss.ccc].
func FormatLRCTimeMillis(seconds float64) string {
	ms := secondsToMillis(seconds)
	return fmt.Sprintf("[%02d:%02d.%03d]", ms/60000, (ms/1000)%60, ms%1000)
}

// FormatSRTTime renders seconds as hh:mm:ss,mmm.
func FormatSRTTime(seconds float64) string {
	ms := secondsToMillis(seconds)
	return fmt.Sprintf(
		"%02d:%02d:%02d,%03d",
		ms/3600000,
		(ms/60000)%60,
		(ms/1000)%60,
		ms%1000,
	)
}

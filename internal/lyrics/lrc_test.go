package lyrics

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseLRCPairsSameTimestamp(t *testing.T) {
	tl := ParseLRC("[00:01.00]Hello\n[00:01.00]Oh-LOW\n[00:05.50]World")

	want := Timeline{
		{Time: 1.0, Text: "Hello", Pronunciation: "Oh-LOW"},
		{Time: 5.5, Text: "World"},
	}
	if len(tl) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(tl), tl)
	}
	for i := range want {
		if tl[i] != want[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, want[i], tl[i])
		}
	}
}

func TestParseLRCHeadersOnly(t *testing.T) {
	tl := ParseLRC("[ti:My Song]\n[ar:Someone]")
	if tl == nil || len(tl) != 0 {
		t.Errorf("expected empty non-nil timeline, got %#v", tl)
	}
}

func TestParseLRCSkipsHeaderText(t *testing.T) {
	prefixes := []string{"ti:", "ar:", "al:", "by:", "lang:", "length:", "re:", "ve:", "RCLyricsBand"}
	for _, prefix := range prefixes {
		t.Run(prefix, func(t *testing.T) {
			tl := ParseLRC("[00:00.00]" + prefix + " something\n[00:02.00]Lyric")
			if len(tl) != 1 || tl[0].Text != "Lyric" {
				t.Errorf("expected only the lyric line, got %+v", tl)
			}
		})
	}

	// prefix match is case sensitive
	tl := ParseLRC("[00:00.00]Ti: not a header")
	if len(tl) != 1 {
		t.Errorf("expected capitalised text to be kept, got %+v", tl)
	}
}

func TestParseLRCMultipleTagsPerLine(t *testing.T) {
	tl := ParseLRC("[00:10.00][00:30.00]Chorus\n[00:20.00]Verse")

	wantTexts := []string{"Chorus", "Verse", "Chorus"}
	wantTimes := []float64{10, 20, 30}
	if len(tl) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(tl), tl)
	}
	for i := range tl {
		if tl[i].Text != wantTexts[i] || tl[i].Time != wantTimes[i] {
			t.Errorf("line %d: got %+v", i, tl[i])
		}
	}
}

func TestParseLRCMultipleTagsPairAcrossLines(t *testing.T) {
	// two lines annotated at the same set of cue points
	tl := ParseLRC("[00:10.00][00:30.00]Chorus\n[00:10.00][00:30.00]KOR-us")
	if len(tl) != 2 {
		t.Fatalf("expected 2 paired lines, got %d: %+v", len(tl), tl)
	}
	for _, line := range tl {
		if line.Text != "Chorus" || line.Pronunciation != "KOR-us" {
			t.Errorf("unexpected pairing: %+v", line)
		}
	}
}

func TestParseLRCThreeWayCollision(t *testing.T) {
	tl := ParseLRC("[00:01.00]A\n[00:01.00]B\n[00:01.00]C\n[00:02.00]D")

	if len(tl) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(tl), tl)
	}
	if tl[0].Text != "A" || tl[0].Pronunciation != "B" {
		t.Errorf("first pair wins: got %+v", tl[0])
	}
	if tl[1].Text != "C" || tl[1].Pronunciation != "" || tl[1].Time != 1 {
		t.Errorf("excess entry should be standalone: got %+v", tl[1])
	}
	if tl[2].Text != "D" {
		t.Errorf("expected D last, got %+v", tl[2])
	}
}

func TestParseLRCSortsAndSkipsJunk(t *testing.T) {
	input := strings.Join([]string{
		"\ufeff[00:20.00]Third",
		"no tag here",
		"[00:05.00]   ",
		"[xx:yy]Broken [00:10.5]Second",
		"[00:01.5]First\r",
		"",
	}, "\n")

	tl := ParseLRC(input)
	wantTexts := []string{"First", "[xx:yy]Broken Second", "Third"}
	if len(tl) != len(wantTexts) {
		t.Fatalf("expected %d lines, got %d: %+v", len(wantTexts), len(tl), tl)
	}
	for i, want := range wantTexts {
		if tl[i].Text != want {
			t.Errorf("line %d: expected %q, got %q", i, want, tl[i].Text)
		}
	}
	if tl[1].Time != 10.5 {
		t.Errorf("expected 10.5, got %v", tl[1].Time)
	}
}

func TestParseLRCStrictlyAscending(t *testing.T) {
	input := "[00:03.00]c\n[00:01.00]a\n[00:02.00]b\n[00:01.00]a2\n[00:03.00]c2\n[00:00.50]z"
	tl := ParseLRC(input)
	for i := 0; i+1 < len(tl); i++ {
		if tl[i].Time >= tl[i+1].Time {
			t.Errorf("times not strictly ascending at %d: %v >= %v", i, tl[i].Time, tl[i+1].Time)
		}
	}
}

func TestParseLRCMetadata(t *testing.T) {
	meta := ParseLRCMetadata("[ti: My Song ]\n[ar:Someone]\n[al:Album]\n[by:me]\n[length:03:12]\n[00:01.00]x")
	want := Metadata{Title: "My Song", Artist: "Someone", Album: "Album", By: "me", Length: "03:12"}
	if meta != want {
		t.Errorf("expected %+v, got %+v", want, meta)
	}
}

func TestEncodeLRC(t *testing.T) {
	tl := Timeline{
		{Time: 1, Text: "Hello", Pronunciation: "Oh-LOW"},
		{Time: 5.5, Text: "World"},
	}

	got := EncodeLRC(tl, Metadata{Title: "Song", Artist: "Band"}, LRCOptions{})
	want := "[ti:Song]\n[ar:Band]\n\n[00:01.000]Hello\n[00:01.000]Oh-LOW\n[00:05.500]World\n"
	if got != want {
		t.Errorf("unexpected LRC:\n%s\nwant:\n%s", got, want)
	}

	legacy := EncodeLRC(tl, Metadata{}, LRCOptions{Centiseconds: true})
	if !strings.HasPrefix(legacy, "[00:01.00]Hello\n") {
		t.Errorf("unexpected legacy LRC:\n%s", legacy)
	}

	// rendering then parsing preserves pairs
	back := ParseLRC(got)
	if len(back) != 2 || back[0] != tl[0] || back[1] != tl[1] {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if ParseLRCMetadata(got).Title != "Song" {
		t.Errorf("title header lost")
	}
}

func TestEncodeLRCPastNinetyNineMinutes(t *testing.T) {
	tl := Timeline{{Time: 6001.5, Text: "Encore", Pronunciation: "on-core"}}

	for _, opts := range []LRCOptions{{}, {Centiseconds: true}} {
		back := ParseLRC(EncodeLRC(tl, Metadata{}, opts))
		if !reflect.DeepEqual(back, tl) {
			t.Errorf("centiseconds=%v: expected %+v, got %+v", opts.Centiseconds, tl, back)
		}
	}
}

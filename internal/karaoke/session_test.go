package karaoke

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mgpai22/kara/internal/assist"
	"github.com/mgpai22/kara/internal/lyrics"
	"github.com/mgpai22/kara/internal/store"
	"github.com/mgpai22/kara/internal/transcribe"
)

const (
	pairedLRC = "[ti:Song]\n[ar:Band]\n" +
		"[00:01.00]Hello\n[00:01.00]heh-loh\n" +
		"[00:03.00]World\n[00:03.00]wurld\n"

	sampleSRT = "1\n00:00:01,000 --> 00:00:03,000\nHello\n\n" +
		"2\n00:00:03,000 --> 00:00:05,000\nWorld\n\n"
)

type fakeTranscriber struct {
	srt  string
	err  error
	song lyrics.Metadata

	// closed when Transcribe is entered, then waits for release
	started chan struct{}
	release chan struct{}
}

func (f *fakeTranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
	song lyrics.Metadata,
) (*transcribe.Result, error) {
	f.song = song
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &transcribe.Result{SRT: f.srt}, nil
}

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestLoadLRC(t *testing.T) {
	s := NewSession(Options{})

	if err := s.Load(pairedLRC, lyrics.FormatLRC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tl := s.Timeline()
	if len(tl) != 2 || tl[0].Pronunciation != "heh-loh" {
		t.Fatalf("unexpected timeline %+v", tl)
	}
	if s.Song().Title != "Song" || s.Song().Artist != "Band" {
		t.Errorf("headers not merged into song: %+v", s.Song())
	}
	if got := lyrics.ParseSRT(s.SRT()); len(got) != 2 || got[1].Text != "World" {
		t.Errorf("canonical SRT does not match timeline: %q", s.SRT())
	}
}

func TestLoadKeepsKnownSong(t *testing.T) {
	s := NewSession(Options{})
	s.SetSong(lyrics.Metadata{Title: "Tagged"})

	if err := s.Load(pairedLRC, lyrics.FormatLRC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Song().Title != "Tagged" || s.Song().Artist != "Band" {
		t.Errorf("unexpected song %+v", s.Song())
	}
}

func TestLoadSRTKeepsOriginalText(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Load(sampleSRT, lyrics.FormatSRT); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SRT() != sampleSRT {
		t.Errorf("SRT should be kept verbatim, got %q", s.SRT())
	}
}

func TestLoadEmptyKeepsTimeline(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Load(pairedLRC, lyrics.FormatLRC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.Load("[ti:only headers]\n", lyrics.FormatLRC)
	if !errors.Is(err, lyrics.ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}
	if len(s.Timeline()) != 2 {
		t.Error("timeline should be unchanged after an empty load")
	}
}

func TestActiveResetsOnReplace(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Load("[00:01.00]a\n[00:02.00]b\n[00:03.00]c\n[00:04.00]d\n", lyrics.FormatLRC); err != nil {
		t.Fatal(err)
	}
	if got := s.Active(3.5); got != 2 {
		t.Fatalf("Active(3.5) = %d, want 2", got)
	}

	if err := s.Load("[00:10.00]x\n[00:20.00]y\n", lyrics.FormatLRC); err != nil {
		t.Fatal(err)
	}
	if got := s.Active(3.5); got != 0 {
		t.Errorf("Active(3.5) after replace = %d, want 0", got)
	}
	if got := s.Active(25); got != 1 {
		t.Errorf("Active(25) = %d, want 1", got)
	}
}

func TestTranscribe(t *testing.T) {
	tr := &fakeTranscriber{srt: sampleSRT}
	s := NewSession(Options{Transcriber: tr})
	s.SetSong(lyrics.Metadata{Title: "Hello", Artist: "Adele"})

	if err := s.Transcribe(context.Background(), "song.mp3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.song.Title != "Hello" || tr.song.Artist != "Adele" {
		t.Errorf("song metadata not passed: %+v", tr.song)
	}
	if len(s.Timeline()) != 2 || s.SRT() != sampleSRT {
		t.Errorf("unexpected state: %+v %q", s.Timeline(), s.SRT())
	}
	if s.Song().Title != "Hello" {
		t.Error("song metadata lost")
	}
}

func TestTranscribeFailureKeepsTimeline(t *testing.T) {
	tests := []struct {
		name string
		tr   *fakeTranscriber
	}{
		{"collaborator error", &fakeTranscriber{err: errors.New("server down")}},
		{"empty result", &fakeTranscriber{srt: "no cues here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(Options{Transcriber: tt.tr})
			if err := s.Load(pairedLRC, lyrics.FormatLRC); err != nil {
				t.Fatal(err)
			}
			before := s.Timeline()

			if err := s.Transcribe(context.Background(), "song.mp3"); err == nil {
				t.Fatal("expected error")
			}
			if after := s.Timeline(); len(after) != len(before) || after[0] != before[0] {
				t.Errorf("timeline changed: %+v", after)
			}
			if s.InFlight(ActionTranscribe) {
				t.Error("guard should be released after failure")
			}
		})
	}
}

func TestTranscribeInFlight(t *testing.T) {
	tr := &fakeTranscriber{
		srt:     sampleSRT,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession(Options{Transcriber: tr})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = s.Transcribe(context.Background(), "song.mp3")
	}()

	<-tr.started
	if err := s.Transcribe(context.Background(), "song.mp3"); !errors.Is(err, ErrInFlight) {
		t.Errorf("expected ErrInFlight, got %v", err)
	}
	close(tr.release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("first call failed: %v", firstErr)
	}
	if s.InFlight(ActionTranscribe) {
		t.Error("guard should be released")
	}
}

func TestGeneratePhonetic(t *testing.T) {
	fake := &fakeCompleter{
		response: "```\n[00:01.000]Hello\n[00:01.000]heh-loh\n[00:03.000]World\n[00:03.000]wurld\n```",
	}
	s := NewSession(Options{Assistant: assist.New(fake)})
	if err := s.Load(sampleSRT, lyrics.FormatSRT); err != nil {
		t.Fatal(err)
	}

	lrc, err := s.GeneratePhonetic(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(lrc, "[00:01.000]Hello") {
		t.Errorf("unexpected LRC %q", lrc)
	}
	if s.Phonetic() != lrc {
		t.Error("phonetic block not kept")
	}

	tl := s.Timeline()
	if len(tl) != 2 || tl[0].Text != "Hello" || tl[0].Pronunciation != "heh-loh" {
		t.Errorf("unexpected timeline %+v", tl)
	}
	if s.SRT() != sampleSRT {
		t.Error("canonical SRT should be unchanged")
	}
	if !strings.Contains(fake.prompts[0], "[00:03.000]World") {
		t.Errorf("prompt should carry current lyrics: %s", fake.prompts[0])
	}
}

func TestGeneratePhoneticUnparseable(t *testing.T) {
	s := NewSession(Options{Assistant: assist.New(&fakeCompleter{response: "Sorry, I can't help."})})
	if err := s.Load(sampleSRT, lyrics.FormatSRT); err != nil {
		t.Fatal(err)
	}

	_, err := s.GeneratePhonetic(context.Background())
	if !errors.Is(err, lyrics.ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}
	if s.Timeline().Paired() {
		t.Error("timeline should be unchanged")
	}
}

func TestGeneratePhoneticWithoutLyrics(t *testing.T) {
	s := NewSession(Options{Assistant: assist.New(&fakeCompleter{})})
	if _, err := s.GeneratePhonetic(context.Background()); !errors.Is(err, ErrNoTimeline) {
		t.Errorf("expected ErrNoTimeline, got %v", err)
	}
}

func TestSwapCurrent(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Load(pairedLRC, lyrics.FormatLRC); err != nil {
		t.Fatal(err)
	}

	if err := s.Swap(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tl := s.Timeline()
	if tl[0].Text != "heh-loh" || tl[0].Pronunciation != "Hello" {
		t.Errorf("unexpected timeline %+v", tl)
	}
	if !strings.Contains(s.SRT(), "heh-loh") {
		t.Errorf("canonical SRT should follow the new primary text: %q", s.SRT())
	}
}

func TestSwapFromBlock(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Swap("[00:01.00]Hello\n[00:01.00]heh-loh\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tl := s.Timeline(); len(tl) != 1 || tl[0].Text != "heh-loh" {
		t.Errorf("unexpected timeline %+v", tl)
	}
}

func TestSwapRejects(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Swap(""); !errors.Is(err, ErrNoTimeline) {
		t.Errorf("expected ErrNoTimeline, got %v", err)
	}

	if err := s.Load(sampleSRT, lyrics.FormatSRT); err != nil {
		t.Fatal(err)
	}
	if err := s.Swap(""); err == nil {
		t.Error("expected error for unpaired timeline")
	}
	if err := s.Swap("garbage"); !errors.Is(err, lyrics.ErrEmptyTimeline) {
		t.Errorf("expected ErrEmptyTimeline, got %v", err)
	}
	if tl := s.Timeline(); len(tl) != 2 || tl[0].Text != "Hello" {
		t.Errorf("timeline should be unchanged: %+v", tl)
	}
}

func TestCorrect(t *testing.T) {
	fake := &fakeCompleter{
		response: "1\n00:00:01,000 --> 00:00:03,000\nHello there\n\n" +
			"2\n00:00:03,000 --> 00:00:05,000\nWorld\n\n" +
			"---CHANGES---\nLine 1: \"Hello\" → \"Hello there\" (missing word)\n",
	}
	s := NewSession(Options{Assistant: assist.New(fake)})
	if err := s.Load(sampleSRT, lyrics.FormatSRT); err != nil {
		t.Fatal(err)
	}
	s.Active(4) // move the cursor

	correction, err := s.Correct(context.Background(), "Hello there\nWorld")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(correction.Changes) != 1 {
		t.Errorf("unexpected changes %+v", correction.Changes)
	}

	tl := s.Timeline()
	if len(tl) != 2 || tl[0].Text != "Hello there" || tl[0].Time != 1 {
		t.Errorf("unexpected timeline %+v", tl)
	}
	if !strings.Contains(s.SRT(), "Hello there") {
		t.Error("canonical SRT not replaced")
	}
	if got := s.Active(0); got != 0 {
		t.Errorf("Active(0) = %d", got)
	}
}

func TestPolishFailureKeepsTimeline(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeCompleter
	}{
		{"collaborator error", &fakeCompleter{err: errors.New("quota")}},
		{"no cues in response", &fakeCompleter{response: "I polished it!\n---CHANGES---\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(Options{Assistant: assist.New(tt.fake)})
			if err := s.Load(sampleSRT, lyrics.FormatSRT); err != nil {
				t.Fatal(err)
			}

			if _, err := s.Polish(context.Background(), ""); err == nil {
				t.Fatal("expected error")
			}
			if s.SRT() != sampleSRT || s.Timeline()[0].Text != "Hello" {
				t.Error("state should be unchanged")
			}
			if s.InFlight(ActionPolish) {
				t.Error("guard should be released")
			}
		})
	}
}

func TestRewriteWithoutLyrics(t *testing.T) {
	s := NewSession(Options{Assistant: assist.New(&fakeCompleter{})})
	if _, err := s.Polish(context.Background(), ""); !errors.Is(err, ErrNoTimeline) {
		t.Errorf("expected ErrNoTimeline, got %v", err)
	}
}

func TestMissingCollaborators(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Transcribe(context.Background(), "a.mp3"); err == nil {
		t.Error("expected error without transcriber")
	}
	if _, err := s.GeneratePhonetic(context.Background()); err == nil {
		t.Error("expected error without assistant")
	}
	if _, err := s.Correct(context.Background(), "ref"); err == nil {
		t.Error("expected error without assistant")
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Load(pairedLRC, lyrics.FormatLRC); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()

	other := NewSession(Options{})
	other.Restore(snap)

	if len(other.Timeline()) != 2 || other.Timeline()[1].Pronunciation != "wurld" {
		t.Errorf("timeline not restored: %+v", other.Timeline())
	}
	if other.Song() != s.Song() || other.SRT() != s.SRT() {
		t.Error("song or SRT not restored")
	}

	// snapshots do not alias session state
	snap.Timeline[0].Text = "changed"
	if other.Timeline()[0].Text != "Hello" {
		t.Error("restored timeline aliases the snapshot")
	}
}

func TestRestoreRebuildsSRT(t *testing.T) {
	s := NewSession(Options{})
	s.Restore(store.Snapshot{Timeline: lyrics.Timeline{{Time: 2, Text: "Only"}}})
	if !strings.Contains(s.SRT(), "00:00:02,000 --> 00:00:05,000") {
		t.Errorf("unexpected SRT %q", s.SRT())
	}
}

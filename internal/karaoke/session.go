package karaoke

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mgpai22/kara/internal/assist"
	"github.com/mgpai22/kara/internal/logging"
	"github.com/mgpai22/kara/internal/lyrics"
	"github.com/mgpai22/kara/internal/store"
	"github.com/mgpai22/kara/internal/transcribe"
)

var (
	// ErrInFlight is returned when an action is started while the previous
	// call of the same action has not finished.
	ErrInFlight = errors.New("action already in progress")

	ErrNoTimeline = errors.New("no lyrics loaded")
)

// long-running session actions, each with its own in-flight guard
type Action string

const (
	ActionTranscribe Action = "transcribe"
	ActionPhonetic   Action = "phonetic"
	ActionCorrect    Action = "correct"
	ActionPolish     Action = "polish"
)

// state is replaced as a whole and never modified after publication.
type state struct {
	timeline lyrics.Timeline
	srt      string
	song     lyrics.Metadata
	phonetic string
	// set by correct and polish: playback restarts from the top
	rewind bool
}

type Options struct {
	Logger      *logging.Logger
	Transcriber transcribe.Transcriber
	Assistant   *assist.Assistant
	CueDuration float64 // seconds, for SRT generated from LRC
}

// Session holds the current timeline and runs the actions that replace it.
// It is safe for concurrent use.
type Session struct {
	state atomic.Pointer[state]

	// cursor hint, valid only for the state it was last seeked on
	cursorMu    sync.Mutex
	cursor      lyrics.Cursor
	cursorState *state

	inflightMu sync.Mutex
	inflight   map[Action]bool

	logger      *logging.Logger
	transcriber transcribe.Transcriber
	assistant   *assist.Assistant
	cueDuration float64
}

func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.CueDuration <= 0 {
		opts.CueDuration = lyrics.DefaultCueDuration
	}

	s := &Session{
		inflight:    make(map[Action]bool),
		logger:      opts.Logger,
		transcriber: opts.Transcriber,
		assistant:   opts.Assistant,
		cueDuration: opts.CueDuration,
	}
	s.state.Store(&state{timeline: lyrics.Timeline{}})
	return s
}

func (s *Session) current() *state {
	return s.state.Load()
}

// replaces the whole state in one store
func (s *Session) commit(next *state, source string) {
	s.state.Store(next)
	s.logger.Infow("Lyrics replaced",
		"source", source,
		"lines", len(next.timeline),
		"paired", next.timeline.Paired(),
	)
}

func (s *Session) begin(a Action) error {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if s.inflight[a] {
		return fmt.Errorf("%s: %w", a, ErrInFlight)
	}
	s.inflight[a] = true
	return nil
}

func (s *Session) end(a Action) {
	s.inflightMu.Lock()
	delete(s.inflight, a)
	s.inflightMu.Unlock()
}

// InFlight reports whether an action is running.
func (s *Session) InFlight(a Action) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	return s.inflight[a]
}

// Timeline returns the current timeline. Callers must not modify it.
func (s *Session) Timeline() lyrics.Timeline {
	return s.current().timeline
}

// SRT returns the canonical SRT text behind the current timeline.
func (s *Session) SRT() string {
	return s.current().srt
}

func (s *Session) Song() lyrics.Metadata {
	return s.current().song
}

// Phonetic returns the last LRC block produced by GeneratePhonetic.
func (s *Session) Phonetic() string {
	return s.current().phonetic
}

// SetSong replaces the song metadata and keeps the timeline.
func (s *Session) SetSong(song lyrics.Metadata) {
	cur := s.current()
	next := *cur
	next.song = song
	next.rewind = false
	s.state.Store(&next)
}

// Active resolves the active line index for playback time t in seconds.
func (s *Session) Active(t float64) int {
	_, idx := s.resolve(t)
	return idx
}

// resolve returns the timeline it resolved against along with the index, so
// callers never pair an index with a different timeline.
func (s *Session) resolve(t float64) (lyrics.Timeline, int) {
	return s.resolveIn(s.current(), t)
}

// resolveIn resolves against a state already read by the caller.
func (s *Session) resolveIn(cur *state, t float64) (lyrics.Timeline, int) {
	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()
	if s.cursorState != cur {
		s.cursor.Reset()
		s.cursorState = cur
	}
	return cur.timeline, s.cursor.Seek(cur.timeline, t)
}

// Load parses uploaded lyrics and makes them current. Text that yields no
// lines is rejected and the current timeline is kept. LRC headers fill in
// song metadata that is not already known.
func (s *Session) Load(text string, format lyrics.Format) error {
	tl, err := lyrics.Parse(text, format)
	if err != nil {
		return err
	}
	if len(tl) == 0 {
		return fmt.Errorf("load %s: %w", format, lyrics.ErrEmptyTimeline)
	}

	cur := s.current()
	next := &state{timeline: tl, song: cur.song}

	if format == lyrics.FormatSRT {
		next.srt = text
	} else {
		next.srt = s.canonicalSRT(tl)
	}
	if format == lyrics.FormatLRC {
		next.song = mergeSong(next.song, lyrics.ParseLRCMetadata(text))
	}

	s.commit(next, "upload")
	return nil
}

// Transcribe runs the transcriber on audioPath and replaces the timeline
// with the result.
func (s *Session) Transcribe(ctx context.Context, audioPath string) error {
	if s.transcriber == nil {
		return fmt.Errorf("no transcriber configured")
	}
	if err := s.begin(ActionTranscribe); err != nil {
		return err
	}
	defer s.end(ActionTranscribe)

	cur := s.current()
	s.logger.Infow("Transcribing", "file", audioPath, "title", cur.song.Title, "artist", cur.song.Artist)

	res, err := s.transcriber.Transcribe(ctx, audioPath, cur.song)
	if err != nil {
		return err
	}

	tl, err := lyrics.ApplyCorrection(res.SRT)
	if err != nil {
		return fmt.Errorf("transcription: %w", err)
	}

	s.commit(&state{timeline: tl, srt: res.SRT, song: s.current().song}, "transcription")
	return nil
}

// GeneratePhonetic asks the assistant for a phonetic rendering of the
// current lyrics and pairs it under each line. It returns the raw LRC block.
func (s *Session) GeneratePhonetic(ctx context.Context) (string, error) {
	if s.assistant == nil {
		return "", fmt.Errorf("no assistant configured")
	}
	if err := s.begin(ActionPhonetic); err != nil {
		return "", err
	}
	defer s.end(ActionPhonetic)

	cur := s.current()
	if len(cur.timeline) == 0 {
		return "", ErrNoTimeline
	}

	primary := make(lyrics.Timeline, len(cur.timeline))
	for i, line := range cur.timeline {
		primary[i] = lyrics.TimedLine{Time: line.Time, Text: line.Text}
	}

	lrc, err := s.assistant.Phonetic(ctx, lyrics.EncodeLRC(primary, lyrics.Metadata{}, lyrics.LRCOptions{}))
	if err != nil {
		return "", err
	}

	tl := lyrics.ParseLRC(lrc)
	if len(tl) == 0 {
		return lrc, fmt.Errorf("phonetic generation: %w", lyrics.ErrEmptyTimeline)
	}

	latest := s.current()
	s.commit(&state{
		timeline: tl,
		srt:      latest.srt,
		song:     latest.song,
		phonetic: lrc,
	}, "phonetic")
	return lrc, nil
}

// Swap makes the pronunciation the primary text. With a non-empty lrc block
// the block is parsed and swapped. Otherwise the current timeline is swapped
// in place, which requires paired lines.
func (s *Session) Swap(lrc string) error {
	cur := s.current()

	var tl lyrics.Timeline
	if lrc != "" {
		swapped, err := lyrics.PhoneticReplace(lrc)
		if err != nil {
			return err
		}
		tl = swapped
	} else {
		if len(cur.timeline) == 0 {
			return ErrNoTimeline
		}
		if !cur.timeline.Paired() {
			return fmt.Errorf("swap: no pronunciation lines to swap")
		}
		tl = lyrics.SwapPronunciation(cur.timeline)
	}

	s.commit(&state{
		timeline: tl,
		srt:      s.canonicalSRT(tl),
		song:     cur.song,
		phonetic: cur.phonetic,
	}, "swap")
	return nil
}

// Correct fixes the current SRT against reference lyrics.
func (s *Session) Correct(ctx context.Context, reference string) (*assist.Correction, error) {
	return s.rewrite(ctx, ActionCorrect, func(srt string) (*assist.Correction, error) {
		return s.assistant.Correct(ctx, srt, reference)
	})
}

// Polish cleans up the current SRT. notes may be empty.
func (s *Session) Polish(ctx context.Context, notes string) (*assist.Correction, error) {
	return s.rewrite(ctx, ActionPolish, func(srt string) (*assist.Correction, error) {
		return s.assistant.Polish(ctx, srt, notes)
	})
}

func (s *Session) rewrite(
	ctx context.Context,
	action Action,
	call func(srt string) (*assist.Correction, error),
) (*assist.Correction, error) {
	if s.assistant == nil {
		return nil, fmt.Errorf("no assistant configured")
	}
	if err := s.begin(action); err != nil {
		return nil, err
	}
	defer s.end(action)

	cur := s.current()
	if cur.srt == "" {
		return nil, ErrNoTimeline
	}

	correction, err := call(cur.srt)
	if err != nil {
		return nil, err
	}

	tl, err := lyrics.ApplyCorrection(correction.SRT)
	if err != nil {
		return correction, fmt.Errorf("%s: %w", action, err)
	}

	s.commit(&state{
		timeline: tl,
		srt:      correction.SRT,
		song:     s.current().song,
		rewind:   true,
	}, string(action))
	s.logger.Debugw("Applied corrections", "action", action, "changes", len(correction.Changes))
	return correction, nil
}

// Snapshot captures the state that is persisted between runs.
func (s *Session) Snapshot() store.Snapshot {
	cur := s.current()
	return store.Snapshot{
		Timeline: cur.timeline.Clone(),
		Song:     cur.song,
		SRT:      cur.srt,
	}
}

// Restore replaces the session state with a saved snapshot.
func (s *Session) Restore(snap store.Snapshot) {
	tl := snap.Timeline.Clone()
	if tl == nil {
		tl = lyrics.Timeline{}
	}
	srt := snap.SRT
	if srt == "" && len(tl) > 0 {
		srt = s.canonicalSRT(tl)
	}
	s.commit(&state{timeline: tl, srt: srt, song: snap.Song}, "restore")
}

func (s *Session) canonicalSRT(tl lyrics.Timeline) string {
	return lyrics.FormatCues(lyrics.TimelineCues(tl, s.cueDuration))
}

// fills empty fields of song from headers
func mergeSong(song, headers lyrics.Metadata) lyrics.Metadata {
	if song.Title == "" {
		song.Title = headers.Title
	}
	if song.Artist == "" {
		song.Artist = headers.Artist
	}
	if song.Album == "" {
		song.Album = headers.Album
	}
	if song.By == "" {
		song.By = headers.By
	}
	if song.Length == "" {
		song.Length = headers.Length
	}
	return song
}

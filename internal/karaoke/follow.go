package karaoke

import (
	"context"
	"sync"
	"time"

	"github.com/mgpai22/kara/internal/lyrics"
)

// DefaultPollInterval is how often Follow samples the clock.
const DefaultPollInterval = 100 * time.Millisecond

// Clock reports the current playback position.
type Clock interface {
	Position() time.Duration
}

// WallClock advances with real time from a starting offset. It can be
// paused and seeked, like a media element.
type WallClock struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
	offset  time.Duration
	paused  bool
}

// NewWallClock starts playing at offset.
func NewWallClock(offset time.Duration) *WallClock {
	c := &WallClock{now: time.Now, offset: offset}
	c.started = c.now()
	return c
}

func (c *WallClock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return c.offset
	}
	return c.offset + c.now().Sub(c.started)
}

func (c *WallClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.offset += c.now().Sub(c.started)
	c.paused = true
}

func (c *WallClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.started = c.now()
	c.paused = false
}

// Seeker is a Clock that Follow can move back to the start.
type Seeker interface {
	Seek(pos time.Duration)
}

// Seek jumps to pos without changing the paused state.
func (c *WallClock) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = pos
	c.started = c.now()
}

// Update is delivered by Follow whenever the active line changes. Timeline
// is the timeline Index refers to. Rewound is set on the first update after
// a correction replaced the lyrics and playback went back to the start.
type Update struct {
	Index    int
	Position time.Duration
	Timeline lyrics.Timeline
	Rewound  bool
}

// Line returns the active line, or false for an empty timeline.
func (u Update) Line() (lyrics.TimedLine, bool) {
	if u.Index < 0 || u.Index >= len(u.Timeline) {
		return lyrics.TimedLine{}, false
	}
	return u.Timeline[u.Index], true
}

// Follow samples clock every interval and calls onChange when the active
// index changes or the timeline is replaced. The first sample always
// produces an update. When Correct or Polish replaces the lyrics, a clock
// that is a Seeker is moved back to zero. Follow blocks until ctx is done.
func (s *Session) Follow(
	ctx context.Context,
	clock Clock,
	interval time.Duration,
	onChange func(Update),
) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last         = -1
		lastTimeline lyrics.Timeline
		lastState    = s.current()
	)

	poll := func() {
		rewound := false
		st := s.current()
		if st != lastState {
			if st.rewind {
				if seeker, ok := clock.(Seeker); ok {
					seeker.Seek(0)
				}
				rewound = true
			}
			lastState = st
		}

		pos := clock.Position()
		tl, idx := s.resolveIn(st, pos.Seconds())
		if idx == last && sameTimeline(tl, lastTimeline) && !rewound {
			return
		}
		last, lastTimeline = idx, tl
		onChange(Update{Index: idx, Position: pos, Timeline: tl, Rewound: rewound})
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			poll()
		}
	}
}

// timelines are never mutated, so identity is enough
func sameTimeline(a, b lyrics.Timeline) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

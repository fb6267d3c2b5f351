package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mgpai22/kara/internal/lyrics"
)

// fixed keys under which session state is persisted
const (
	KeyLyrics = "kara:lyrics"
	KeySong   = "kara:song"
	KeySRT    = "kara:srt"
)

var ErrNotFound = errors.New("no saved state")

// Snapshot is everything needed to reload a session without loss.
type Snapshot struct {
	Timeline lyrics.Timeline
	Song     lyrics.Metadata
	SRT      string
}

// interface for persisting session snapshots
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
	Clear(ctx context.Context) error
}

// encode serializes a snapshot into its per-key values.
func encode(snap Snapshot) (map[string][]byte, error) {
	tl := snap.Timeline
	if tl == nil {
		tl = lyrics.Timeline{}
	}
	lyricsJSON, err := json.Marshal(tl)
	if err != nil {
		return nil, fmt.Errorf("failed to encode timeline: %w", err)
	}
	songJSON, err := json.Marshal(snap.Song)
	if err != nil {
		return nil, fmt.Errorf("failed to encode song: %w", err)
	}
	return map[string][]byte{
		KeyLyrics: lyricsJSON,
		KeySong:   songJSON,
		KeySRT:    []byte(snap.SRT),
	}, nil
}

// decode rebuilds a snapshot. A missing lyrics value means nothing was saved.
func decode(values map[string][]byte) (Snapshot, error) {
	var snap Snapshot

	raw, ok := values[KeyLyrics]
	if !ok {
		return snap, ErrNotFound
	}
	if err := json.Unmarshal(raw, &snap.Timeline); err != nil {
		return snap, fmt.Errorf("failed to decode timeline: %w", err)
	}

	if raw, ok := values[KeySong]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &snap.Song); err != nil {
			return snap, fmt.Errorf("failed to decode song: %w", err)
		}
	}
	snap.SRT = string(values[KeySRT])

	return snap, nil
}

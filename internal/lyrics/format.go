package lyrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// represents supported lyric formats
type Format string

const (
	FormatLRC Format = "lrc"
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// interface for rendering a timeline
type Writer interface {
	Write(w io.Writer, tl Timeline, meta Metadata) error
}

type LRCWriter struct {
	Centiseconds bool
}

type SRTWriter struct {
	CueDuration float64
}

type VTTWriter struct {
	CueDuration float64
}

// WriteOptions tunes the writers. The zero value gives the defaults.
type WriteOptions struct {
	CueDuration  float64 // seconds a cue stays up, DefaultCueDuration when zero
	Centiseconds bool    // legacy two-digit LRC fractions
}

func NewWriter(format Format, opts WriteOptions) (Writer, error) {
	cue := opts.CueDuration
	if cue <= 0 {
		cue = DefaultCueDuration
	}

	switch format {
	case FormatLRC:
		return &LRCWriter{Centiseconds: opts.Centiseconds}, nil
	case FormatSRT:
		return &SRTWriter{CueDuration: cue}, nil
	case FormatVTT:
		return &VTTWriter{CueDuration: cue}, nil
	case FormatASS:
		return &ASSWriter{
			Title:       "Kara Lyrics",
			FontName:    "Arial",
			FontSize:    28,
			CueDuration: cue,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (w *LRCWriter) Write(out io.Writer, tl Timeline, meta Metadata) error {
	_, err := io.WriteString(out, EncodeLRC(tl, meta, LRCOptions{Centiseconds: w.Centiseconds}))
	return err
}

func (w *SRTWriter) Write(out io.Writer, tl Timeline, _ Metadata) error {
	_, err := io.WriteString(out, FormatCues(TimelineCues(tl, w.CueDuration)))
	return err
}

func (w *VTTWriter) Write(out io.Writer, tl Timeline, _ Metadata) error {
	return WriteVTT(out, tl, w.CueDuration)
}

// Parse decodes text in the given format. Only LRC, SRT and WebVTT can be
// read.
func Parse(text string, format Format) (Timeline, error) {
	switch format {
	case FormatLRC:
		return ParseLRC(text), nil
	case FormatSRT:
		return ParseSRT(text), nil
	case FormatVTT:
		return ReadVTT(strings.NewReader(text))
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// Open reads and parses a lyrics file, choosing the format by extension.
func Open(path string) (Timeline, Metadata, error) {
	format, ok := FormatFromExtension(path)
	if !ok {
		return nil, Metadata{}, fmt.Errorf("unsupported lyrics format: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read lyrics file: %w", err)
	}

	tl, err := Parse(string(data), format)
	if err != nil {
		return nil, Metadata{}, err
	}

	var meta Metadata
	if format == FormatLRC {
		meta = ParseLRCMetadata(string(data))
	}
	return tl, meta, nil
}

// WriteFile renders tl in format and writes it to path, creating parent
// directories as needed.
func WriteFile(path string, format Format, tl Timeline, meta Metadata, opts WriteOptions) error {
	writer, err := NewWriter(format, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writer.Write(f, tl, meta); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return f.Close()
}

// format based on file extension
func FormatFromExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lrc":
		return FormatLRC, true
	case ".srt":
		return FormatSRT, true
	case ".vtt":
		return FormatVTT, true
	case ".ass", ".ssa":
		return FormatASS, true
	default:
		return "", false
	}
}

// file extension for a format
func ExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".lrc"
	}
}

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatLRC, FormatSRT, FormatVTT, FormatASS:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use lrc, srt, vtt, or ass", name)
	}
}

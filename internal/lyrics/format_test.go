package lyrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenLRC(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "song.lrc")
	content := "[ti:Song]\n[ar:Band]\n[00:01.00]Hello\n[00:01.00]Oh-LOW\n[00:05.50]World\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	tl, meta, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open LRC file: %v", err)
	}
	if len(tl) != 2 || tl[0].Pronunciation != "Oh-LOW" {
		t.Errorf("unexpected timeline: %+v", tl)
	}
	if meta.Title != "Song" || meta.Artist != "Band" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestOpenRejectsUnknownExtension(t *testing.T) {
	if _, _, err := Open("lyrics.txt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestWriteFileAndReopen(t *testing.T) {
	tl := Timeline{
		{Time: 1, Text: "Hello", Pronunciation: "Oh-LOW"},
		{Time: 5.5, Text: "World"},
	}
	tmpDir := t.TempDir()

	for _, format := range []Format{FormatLRC, FormatSRT, FormatVTT} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(tmpDir, "nested", "out"+ExtensionForFormat(format))
			if err := WriteFile(path, format, tl, Metadata{Title: "Song"}, WriteOptions{}); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			back, _, err := Open(path)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if len(back) != 2 || back[0].Text != "Hello" || back[1].Time != 5.5 {
				t.Fatalf("unexpected timeline after round trip: %+v", back)
			}

			// SRT carries only the primary text
			wantPron := "Oh-LOW"
			if format == FormatSRT {
				wantPron = ""
			}
			if back[0].Pronunciation != wantPron || back[1].Pronunciation != "" {
				t.Errorf("pronunciation lost or invented: %+v", back)
			}
		})
	}
}

func TestWriteVTT(t *testing.T) {
	tl := Timeline{{Time: 1, Text: "Hello", Pronunciation: "Oh-LOW"}}

	var buf bytes.Buffer
	if err := WriteVTT(&buf, tl, DefaultCueDuration); err != nil {
		t.Fatalf("WriteVTT failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"WEBVTT", "00:00:01.000 --> 00:00:04.000", "Hello", "Oh-LOW"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestASSWriter(t *testing.T) {
	writer, err := NewWriter(FormatASS, WriteOptions{CueDuration: 3})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	var buf bytes.Buffer
	tl := Timeline{{Time: 61.25, Text: "Hello", Pronunciation: "Oh-LOW"}}
	if err := writer.Write(&buf, tl, Metadata{Title: "My Song"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Title: My Song") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, `Dialogue: 0,0:01:01.25,0:01:04.25,Default,,0,0,0,,Hello\NOh-LOW`) {
		t.Errorf("unexpected dialogue:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"lrc", "SRT", " vtt ", "ass"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseFormat("txt"); err == nil {
		t.Error("expected error for txt")
	}
}

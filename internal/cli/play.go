package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/audio"
	"github.com/mgpai22/kara/internal/karaoke"
	"github.com/mgpai22/kara/internal/lyrics"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Follow the lyrics in real time",
	Long: `Print the active lyric line as playback time advances, starting the
clock when the command starts. Start kara play together with your music
player, or use --start to join a song already playing.

The clock is sampled every poll_interval (default 100ms) and a line is
printed only when the active line changes.

Examples:
  kara play --lyrics song.lrc
  kara play --audio song.mp3 --start 1m05s
  kara play --window 0`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	addLyricsFlag(playCmd)
	playCmd.Flags().
		Duration("start", 0, "Playback position to start from (e.g., 45s, 1m30s)")
	playCmd.Flags().
		String("audio", "", "Audio file to read song duration and tags from")
	playCmd.Flags().
		Int("window", 3, "Lines of context to show before and after the active line")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	start, _ := cmd.Flags().GetDuration("start")
	audioPath, _ := cmd.Flags().GetString("audio")
	window, _ := cmd.Flags().GetInt("window")

	ws, err := openWorkspace(ctx, cmd, karaoke.Options{})
	if err != nil {
		return err
	}
	defer ws.close()

	if err := ws.requireLyrics(); err != nil {
		return err
	}

	tl := ws.session.Timeline()
	end := time.Duration((tl[len(tl)-1].Time + cfg.Player.CueDuration) * float64(time.Second))

	if audioPath != "" {
		info, err := audio.Probe(ctx, audioPath)
		if err != nil {
			return fmt.Errorf("failed to read audio: %w", err)
		}
		if info.Duration > 0 {
			end = info.Duration
		}
		if !info.Song.IsZero() {
			ws.session.SetSong(info.Song)
		}
	}

	if start >= end {
		return fmt.Errorf("start %s is past the end of the song (%s)", start, end)
	}

	if lyricsPath, _ := cmd.Flags().GetString("lyrics"); lyricsPath != "" || audioPath != "" {
		if err := ws.save(ctx); err != nil {
			logger.Warnw("Could not save session", "error", err)
		}
	}

	fmt.Printf("Playing: %s\n\n", describe(ws.session))
	logger.Debugw("Following playback",
		"start", start,
		"end", end,
		"poll_interval", cfg.Player.PollInterval,
	)

	playCtx, cancel := context.WithTimeout(ctx, end-start)
	defer cancel()

	clock := karaoke.NewWallClock(start)
	err = ws.session.Follow(playCtx, clock, cfg.Player.PollInterval, func(u karaoke.Update) {
		renderUpdate(os.Stdout, u, window)
	})
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// prints the active line, with context lines when window > 0
func renderUpdate(w io.Writer, u karaoke.Update, window int) {
	if u.Rewound {
		fmt.Fprintln(w, "--- lyrics updated, back to the start ---")
	}
	if window <= 0 {
		if line, ok := u.Line(); ok {
			fmt.Fprintln(w, formatLine(line, true))
		}
		return
	}

	lines, active := u.Timeline.Window(u.Index, window, window)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("--- %s ---\n", formatClock(u.Position)))
	for i, line := range lines {
		sb.WriteString(formatLine(line, i == active))
		sb.WriteString("\n")
	}
	fmt.Fprintln(w, sb.String())
}

func formatLine(line lyrics.TimedLine, active bool) string {
	marker := "  "
	if active {
		marker = "> "
	}
	out := marker + lyrics.FormatLRCTime(line.Time) + " " + line.Text
	if line.Pronunciation != "" {
		out += "\n" + strings.Repeat(" ", len(marker)+11) + line.Pronunciation
	}
	return out
}

// m:ss
func formatClock(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

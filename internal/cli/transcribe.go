package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/audio"
	"github.com/mgpai22/kara/internal/karaoke"
	"github.com/mgpai22/kara/internal/transcribe"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Transcribe a song into timed lyrics",
	Long: `Transcribe the vocals of an audio or video file into SRT lyrics and make
them the current session.

The audio is compressed to 16 kHz mono mp3 first. Title and artist tags
are read from the file and sent along as context; --title and --artist
override them.

Providers:
  whisper  self-hosted whisper server (server_url, default http://localhost:3001)
  openai   OpenAI whisper-1 (OPENAI_API_KEY)
  gemini   Google Gemini (GEMINI_API_KEY)

Examples:
  kara transcribe song.mp3
  kara transcribe song.flac --provider openai -o song.srt
  kara transcribe clip.mp4 --provider gemini --title "Yesterday" --artist "The Beatles"`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		String("provider", "", "Transcription provider (whisper, openai, gemini)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/GEMINI_API_KEY env var)")
	transcribeCmd.Flags().
		String("model", "", "Model to use for transcription")
	transcribeCmd.Flags().
		String("server", "", "Whisper server URL (overrides config and KARA_WHISPER_URL)")
	transcribeCmd.Flags().String("title", "", "Song title")
	transcribeCmd.Flags().String("artist", "", "Song artist")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	title, _ := cmd.Flags().GetString("title")
	artist, _ := cmd.Flags().GetString("artist")
	outputPath, _ := cmd.Flags().GetString("output")

	transcriber, provider, err := newTranscriber(cmd)
	if err != nil {
		return err
	}

	if server, ok := transcriber.(*transcribe.WhisperServer); ok && !server.Health(ctx) {
		return fmt.Errorf("whisper server is not reachable: start it or set server_url / KARA_WHISPER_URL")
	}

	ws, err := openWorkspace(ctx, cmd, karaoke.Options{Transcriber: transcriber})
	if err != nil {
		return err
	}
	defer ws.close()

	song := ws.session.Song()
	if info, err := audio.Probe(ctx, mediaPath); err != nil {
		logger.Warnw("Could not read media tags", "error", err)
	} else {
		song = info.Song
		logger.Infow("Media probed",
			"duration", info.Duration.String(),
			"title", info.Song.Title,
			"artist", info.Song.Artist,
		)
	}
	if title != "" {
		song.Title = title
	}
	if artist != "" {
		song.Artist = artist
	}
	ws.session.SetSong(song)

	tempDir, err := os.MkdirTemp("", "kara-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio.mp3")
	logger.Infow("Compressing audio for transcription")
	if err := audio.CompressAudio(ctx, mediaPath, audioPath, audio.DefaultCompressionOptions()); err != nil {
		return fmt.Errorf("failed to compress audio: %w", err)
	}

	logger.Infow("Transcribing audio", "provider", provider)
	if err := ws.session.Transcribe(ctx, audioPath); err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if err := ws.save(ctx); err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".srt"
	}
	if err := os.WriteFile(outputPath, []byte(ws.session.SRT()), 0644); err != nil {
		return fmt.Errorf("failed to write SRT: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Lyrics transcribed: %s\n", absOutput)
	fmt.Printf("  Session: %s\n", describe(ws.session))

	return nil
}

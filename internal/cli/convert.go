package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/lyrics"
)

var convertCmd = &cobra.Command{
	Use:   "convert [lyrics_file]",
	Short: "Convert lyrics between LRC, SRT, WebVTT and ASS",
	Long: `Convert a lyrics file to another format.

Input may be LRC, SRT or WebVTT. Lines sharing a timestamp are paired as
original + pronunciation; LRC, WebVTT and ASS output keep both, SRT output
keeps only the original. SRT cues generated from LRC last cue_duration
seconds (default 3).

Examples:
  kara convert song.srt
  kara convert song.lrc -f srt
  kara convert song.lrc -o song.ass
  kara convert song.srt -o song.lrc --centiseconds`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		StringP("format", "f", "", "Output format (lrc, srt, vtt, ass); defaults to the output extension")
	convertCmd.Flags().
		Bool("centiseconds", false, "Write LRC tags as [mm:ss.cc] instead of [mm:ss.mmm]")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	formatStr, _ := cmd.Flags().GetString("format")
	centiseconds, _ := cmd.Flags().GetBool("centiseconds")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("lyrics file not found: %s", inputPath)
	}
	inputFormat, ok := lyrics.FormatFromExtension(inputPath)
	if !ok || inputFormat == lyrics.FormatASS {
		return fmt.Errorf("unsupported input %q: use .lrc, .srt or .vtt", filepath.Ext(inputPath))
	}

	format, err := outputFormat(inputFormat, formatStr, outputPath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + lyrics.ExtensionForFormat(format)
	}
	if filepath.Clean(outputPath) == filepath.Clean(inputPath) {
		return fmt.Errorf("output %s would overwrite the input", outputPath)
	}

	logger.Infow("Converting lyrics",
		"input", inputPath,
		"output", outputPath,
		"format", format,
	)

	// SRT to LRC goes through the text converter so cue text is kept as-is
	if inputFormat == lyrics.FormatSRT && format == lyrics.FormatLRC && centiseconds {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read lyrics file: %w", err)
		}
		lrc := lyrics.ConvertSRTToLRC(string(data))
		if lrc == "" {
			return fmt.Errorf("%s: %w", inputPath, lyrics.ErrEmptyTimeline)
		}
		if err := os.WriteFile(outputPath, []byte(lrc+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write lyrics: %w", err)
		}
		fmt.Printf("Lyrics converted: %s\n", outputPath)
		return nil
	}

	tl, meta, err := lyrics.Open(inputPath)
	if err != nil {
		return err
	}
	if len(tl) == 0 {
		return fmt.Errorf("%s: %w", inputPath, lyrics.ErrEmptyTimeline)
	}

	err = lyrics.WriteFile(outputPath, format, tl, meta, lyrics.WriteOptions{
		CueDuration:  cfg.Player.CueDuration,
		Centiseconds: centiseconds,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lyrics converted: %s\n", outputPath)
	fmt.Printf("  Lines: %d\n", len(tl))
	if tl.Paired() {
		fmt.Println("  With pronunciation lines")
	}
	return nil
}

// flag first, then output extension, then the "other" of lrc/srt
func outputFormat(input lyrics.Format, flagValue, outputPath string) (lyrics.Format, error) {
	if flagValue != "" {
		return lyrics.ParseFormat(flagValue)
	}
	if outputPath != "" {
		if f, ok := lyrics.FormatFromExtension(outputPath); ok {
			return f, nil
		}
		return "", fmt.Errorf("cannot infer format from %s: use --format", outputPath)
	}
	if input == lyrics.FormatLRC {
		return lyrics.FormatSRT, nil
	}
	return lyrics.FormatLRC, nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/assist"
	"github.com/mgpai22/kara/internal/karaoke"
)

var correctCmd = &cobra.Command{
	Use:   "correct",
	Short: "Fix transcription errors against reference lyrics",
	Long: `Compare the session's SRT with the song's published lyrics and let an
AI model fix misheard words. Timestamps are kept; only text changes.

Examples:
  kara correct --reference lyrics.txt
  kara correct --reference lyrics.txt --provider openai --base-url https://api.groq.com/openai/v1 --model llama-3.1-70b-versatile`,
	Args: cobra.NoArgs,
	RunE: runCorrect,
}

var polishCmd = &cobra.Command{
	Use:   "polish",
	Short: "Clean up spelling and punctuation with AI",
	Long: `Polish the session's lyrics without reference lyrics: misheard words,
spelling, capitalization and punctuation. Timestamps are kept.

Examples:
  kara polish
  kara polish --notes "keep the Spanish lines untouched" -o song.lrc`,
	Args: cobra.NoArgs,
	RunE: runPolish,
}

func init() {
	rootCmd.AddCommand(correctCmd, polishCmd)

	addAssistFlags(correctCmd)
	correctCmd.Flags().
		StringP("reference", "r", "", "File with the reference lyrics (required)")
	_ = correctCmd.MarkFlagRequired("reference")

	addAssistFlags(polishCmd)
	polishCmd.Flags().String("notes", "", "Extra instructions for the model")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	referencePath, _ := cmd.Flags().GetString("reference")
	reference, err := os.ReadFile(referencePath)
	if err != nil {
		return fmt.Errorf("failed to read reference lyrics: %w", err)
	}

	return runRewrite(cmd, "Correcting lyrics", func(ws *workspace) (*assist.Correction, error) {
		return ws.session.Correct(cmd.Context(), string(reference))
	})
}

func runPolish(cmd *cobra.Command, args []string) error {
	notes, _ := cmd.Flags().GetString("notes")

	return runRewrite(cmd, "Polishing lyrics", func(ws *workspace) (*assist.Correction, error) {
		return ws.session.Polish(cmd.Context(), notes)
	})
}

func runRewrite(
	cmd *cobra.Command,
	message string,
	rewrite func(ws *workspace) (*assist.Correction, error),
) error {
	ctx := cmd.Context()

	assistant, err := newAssistant(cmd)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, cmd, karaoke.Options{Assistant: assistant})
	if err != nil {
		return err
	}
	defer ws.close()

	if err := ws.requireLyrics(); err != nil {
		return err
	}

	logger.Infow(message, "lines", len(ws.session.Timeline()))
	correction, err := rewrite(ws)
	if err != nil {
		return err
	}

	if err := ws.save(ctx); err != nil {
		return err
	}
	if err := ws.export(cmd); err != nil {
		return err
	}

	fmt.Print(assist.FormatChangeSummary(correction.Changes))
	fmt.Printf("Session: %s\n", describe(ws.session))
	return nil
}

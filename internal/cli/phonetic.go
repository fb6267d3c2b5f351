package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/karaoke"
)

var phoneticCmd = &cobra.Command{
	Use:   "phonetic",
	Short: "Generate phonetic pronunciation lines with AI",
	Long: `Ask an AI model to write a sung phonetic rendering of every lyric line.
Each line gets its pronunciation as a second line with the same timestamp.

With --swap the pronunciation becomes the main line.

Examples:
  kara phonetic --lyrics song.lrc
  kara phonetic --provider anthropic -o song_phonetic.lrc
  kara phonetic --provider openai --base-url https://openrouter.ai/api/v1 --model deepseek/deepseek-chat-v3.1:free`,
	Args: cobra.NoArgs,
	RunE: runPhonetic,
}

var swapCmd = &cobra.Command{
	Use:   "swap [lrc_file]",
	Short: "Swap main lines and pronunciation lines",
	Long: `Make the pronunciation of every paired line the main line, and the main
line the pronunciation. Running it twice restores the original.

Given an LRC file that pairs lines (original first, then pronunciation
with the same timestamp), the file is loaded with the pair swapped.

Examples:
  kara swap
  kara swap song_phonetic.lrc -o song.lrc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSwap,
}

func init() {
	rootCmd.AddCommand(phoneticCmd, swapCmd)

	addAssistFlags(phoneticCmd)
	phoneticCmd.Flags().Bool("swap", false, "Make the phonetic line the main line")
}

func runPhonetic(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	swap, _ := cmd.Flags().GetBool("swap")

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

	logger.Infow("Generating phonetic lyrics", "lines", len(ws.session.Timeline()))
	raw, err := ws.session.GeneratePhonetic(ctx)
	if err != nil {
		logger.Debugw("Model response", "text", raw)
		return err
	}

	if swap {
		if err := ws.session.Swap(""); err != nil {
			return err
		}
	}

	if err := ws.save(ctx); err != nil {
		return err
	}
	if err := ws.export(cmd); err != nil {
		return err
	}

	fmt.Printf("Phonetic lyrics ready: %s\n", describe(ws.session))
	return nil
}

func runSwap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ws, err := openWorkspace(ctx, cmd, karaoke.Options{})
	if err != nil {
		return err
	}
	defer ws.close()

	var block string
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read lyrics file: %w", err)
		}
		block = string(data)
	}

	if err := ws.session.Swap(block); err != nil {
		return err
	}

	if err := ws.save(ctx); err != nil {
		return err
	}
	if err := ws.export(cmd); err != nil {
		return err
	}

	fmt.Printf("Lines swapped: %s\n", describe(ws.session))
	return nil
}

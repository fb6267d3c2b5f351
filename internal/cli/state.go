package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/karaoke"
	"github.com/mgpai22/kara/internal/lyrics"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or change the saved session",
	Long: `The session (lyrics, song info and canonical SRT) is saved after
every command that changes it, in the file or Redis store set in the config.

Examples:
  kara state show
  kara state load song.lrc
  kara state export -o song.srt
  kara state clear`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved lyrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context(), cmd, karaoke.Options{})
		if err != nil {
			return err
		}
		defer ws.close()

		fmt.Printf("Session: %s\n\n", describe(ws.session))
		fmt.Print(lyrics.EncodeLRC(ws.session.Timeline(), ws.session.Song(), lyrics.LRCOptions{}))
		return nil
	},
}

var stateLoadCmd = &cobra.Command{
	Use:   "load [lyrics_file]",
	Short: "Replace the saved lyrics with a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx, cmd, karaoke.Options{})
		if err != nil {
			return err
		}
		defer ws.close()

		if err := ws.loadFile(args[0]); err != nil {
			return err
		}
		if err := ws.save(ctx); err != nil {
			return err
		}

		fmt.Printf("Session: %s\n", describe(ws.session))
		return nil
	},
}

var stateExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the saved lyrics to --output (lrc, srt, vtt or ass)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if out, _ := cmd.Flags().GetString("output"); out == "" {
			return fmt.Errorf("--output is required")
		}

		ws, err := openWorkspace(cmd.Context(), cmd, karaoke.Options{})
		if err != nil {
			return err
		}
		defer ws.close()

		if err := ws.requireLyrics(); err != nil {
			return err
		}
		return ws.export(cmd)
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)

		if err := st.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Println("Session cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd, stateLoadCmd, stateExportCmd, stateClearCmd)
}

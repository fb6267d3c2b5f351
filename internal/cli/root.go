package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/config"
	"github.com/mgpai22/kara/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kara",
	Short: "Karaoke lyrics toolkit",
	Long: `Kara loads, converts and plays time-synced song lyrics.

It reads LRC, SRT and WebVTT, pairs lines that share a timestamp
(original + pronunciation), follows playback time to highlight the
active line, and uses AI services to transcribe songs, generate
phonetic lyrics and correct transcriptions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debugw("Loaded config", "path", path, "store", cfg.Store.Backend)
		return nil
	},
}

// Execute runs the CLI. Ctrl-C cancels the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/kara/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language of the lyrics (e.g., en, es, fr)")
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kara/internal/assist"
	"github.com/mgpai22/kara/internal/karaoke"
	"github.com/mgpai22/kara/internal/lyrics"
	"github.com/mgpai22/kara/internal/store"
	"github.com/mgpai22/kara/internal/transcribe"
)

// env var holding the API key for each provider
var apiKeyEnv = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// resolves the key from the flag, then the provider's env var
func apiKeyFor(provider, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	envVar, ok := apiKeyEnv[provider]
	if !ok {
		return "", nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"%s API key is required: use --api-key flag or set %s environment variable",
		provider,
		envVar,
	)
}

func openStore() (store.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
	default:
		return store.NewFileStore(cfg.Store.Dir), nil
	}
}

func closeStore(st store.Store) {
	if rs, ok := st.(*store.RedisStore); ok {
		_ = rs.Close()
	}
}

// workspace is a session backed by the configured store
type workspace struct {
	session *karaoke.Session
	store   store.Store
}

// openWorkspace restores the saved session. A lyrics file given with
// --lyrics replaces it.
func openWorkspace(ctx context.Context, cmd *cobra.Command, opts karaoke.Options) (*workspace, error) {
	st, err := openStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	opts.Logger = logger
	if opts.CueDuration == 0 {
		opts.CueDuration = cfg.Player.CueDuration
	}
	session := karaoke.NewSession(opts)

	snap, err := st.Load(ctx)
	switch {
	case err == nil:
		session.Restore(snap)
	case errors.Is(err, store.ErrNotFound):
		logger.Debugw("No saved session")
	default:
		closeStore(st)
		return nil, fmt.Errorf("failed to load saved session: %w", err)
	}

	ws := &workspace{session: session, store: st}

	if cmd.Flags().Lookup("lyrics") != nil {
		if path, _ := cmd.Flags().GetString("lyrics"); path != "" {
			if err := ws.loadFile(path); err != nil {
				ws.close()
				return nil, err
			}
		}
	}

	return ws, nil
}

func (w *workspace) loadFile(path string) error {
	format, ok := lyrics.FormatFromExtension(path)
	if !ok || format == lyrics.FormatASS {
		return fmt.Errorf("unsupported lyrics file %s: use .lrc, .srt or .vtt", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read lyrics file: %w", err)
	}

	if err := w.session.Load(string(data), format); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	logger.Infow("Loaded lyrics",
		"file", path,
		"lines", len(w.session.Timeline()),
		"paired", w.session.Timeline().Paired(),
	)
	return nil
}

func (w *workspace) save(ctx context.Context) error {
	if err := w.store.Save(ctx, w.session.Snapshot()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (w *workspace) close() {
	closeStore(w.store)
}

func (w *workspace) requireLyrics() error {
	if len(w.session.Timeline()) == 0 {
		return fmt.Errorf("%w: load a file with --lyrics or run 'kara transcribe' first", karaoke.ErrNoTimeline)
	}
	return nil
}

// writes the session timeline when --output is set
func (w *workspace) export(cmd *cobra.Command) error {
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		return nil
	}

	format, ok := lyrics.FormatFromExtension(outputPath)
	if !ok {
		return fmt.Errorf("unsupported output format: %s", outputPath)
	}

	err := lyrics.WriteFile(
		outputPath,
		format,
		w.session.Timeline(),
		w.session.Song(),
		lyrics.WriteOptions{CueDuration: cfg.Player.CueDuration},
	)
	if err != nil {
		return err
	}

	fmt.Printf("Lyrics written: %s\n", outputPath)
	return nil
}

func newAssistant(cmd *cobra.Command) (*assist.Assistant, error) {
	providerName, _ := cmd.Flags().GetString("provider")
	if providerName == "" {
		providerName = cfg.Assist.Provider
	}
	provider, err := assist.ParseProvider(providerName)
	if err != nil {
		return nil, err
	}

	flagKey, _ := cmd.Flags().GetString("api-key")
	apiKey, err := apiKeyFor(string(provider), flagKey)
	if err != nil {
		return nil, err
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.Assist.Model
	}
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = cfg.Assist.BaseURL
	}

	completer, err := assist.Factory(cmd.Context(), provider, apiKey, assist.Options{
		Model:   model,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", provider, err)
	}

	logger.Debugw("Using assistant", "provider", provider, "model", model, "base_url", baseURL)
	return assist.New(completer), nil
}

func addAssistFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "AI provider (openai, anthropic, gemini)")
	cmd.Flags().StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/ANTHROPIC_API_KEY/GEMINI_API_KEY)")
	cmd.Flags().String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	cmd.Flags().String("base-url", "", "OpenAI-compatible endpoint, e.g. https://openrouter.ai/api/v1")
	addLyricsFlag(cmd)
}

func addLyricsFlag(cmd *cobra.Command) {
	cmd.Flags().String("lyrics", "", "Lyrics file (.lrc, .srt, .vtt) to load instead of the saved session")
}

func newTranscriber(cmd *cobra.Command) (transcribe.Transcriber, transcribe.Provider, error) {
	providerName, _ := cmd.Flags().GetString("provider")
	if providerName == "" {
		providerName = cfg.Transcribe.Provider
	}
	provider, err := transcribe.ParseProvider(providerName)
	if err != nil {
		return nil, "", err
	}

	var apiKey string
	if provider != transcribe.ProviderWhisper {
		flagKey, _ := cmd.Flags().GetString("api-key")
		if apiKey, err = apiKeyFor(string(provider), flagKey); err != nil {
			return nil, "", err
		}
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.Transcribe.Model
	}
	language, _ := cmd.Flags().GetString("language")
	if language == "" {
		language = cfg.Transcribe.Language
	}
	serverURL, _ := cmd.Flags().GetString("server")
	if serverURL == "" {
		serverURL = cfg.Transcribe.ServerURL
	}

	tr, err := transcribe.Factory(cmd.Context(), provider, apiKey, transcribe.Options{
		Language:  language,
		Model:     model,
		ServerURL: serverURL,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create transcriber: %w", err)
	}
	return tr, provider, nil
}

// one-line description of the session for status output
func describe(s *karaoke.Session) string {
	tl := s.Timeline()
	parts := []string{fmt.Sprintf("%d lines", len(tl))}
	if tl.Paired() {
		parts = append(parts, "with pronunciation")
	}
	song := s.Song()
	if song.Title != "" {
		title := song.Title
		if song.Artist != "" {
			title += " - " + song.Artist
		}
		parts = append(parts, title)
	}
	return strings.Join(parts, ", ")
}

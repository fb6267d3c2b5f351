package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultCueDuration  = 3.0
	DefaultWhisperURL   = "http://localhost:3001"
)

type fileConfig struct {
	Player struct {
		PollInterval string  `toml:"poll_interval"`
		CueDuration  float64 `toml:"cue_duration"`
	} `toml:"player"`

	Transcribe struct {
		Provider  string `toml:"provider"`
		ServerURL string `toml:"server_url"`
		Model     string `toml:"model"`
		Language  string `toml:"language"`
	} `toml:"transcribe"`

	Assist struct {
		Provider string `toml:"provider"`
		Model    string `toml:"model"`
		BaseURL  string `toml:"base_url"`
	} `toml:"assist"`

	Store struct {
		Backend       string `toml:"backend"`
		Dir           string `toml:"dir"`
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	} `toml:"store"`
}

type PlayerConfig struct {
	PollInterval time.Duration
	CueDuration  float64
}

type TranscribeConfig struct {
	Provider  string
	ServerURL string
	Model     string
	Language  string
}

type AssistConfig struct {
	Provider string
	Model    string
	BaseURL  string
}

type StoreConfig struct {
	Backend       string // file or redis
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type Config struct {
	Player     PlayerConfig
	Transcribe TranscribeConfig
	Assist     AssistConfig
	Store      StoreConfig
}

func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			PollInterval: DefaultPollInterval,
			CueDuration:  DefaultCueDuration,
		},
		Transcribe: TranscribeConfig{
			Provider:  "whisper",
			ServerURL: DefaultWhisperURL,
		},
		Assist: AssistConfig{
			Provider: "openai",
		},
		Store: StoreConfig{
			Backend: "file",
			Dir:     defaultStateDir(),
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/kara/config.toml, falling back to
// ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "kara", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "kara.toml"
	}
	return filepath.Join(home, ".config", "kara", "config.toml")
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "kara")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "kara_state"
	}
	return filepath.Join(home, ".local", "state", "kara")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	var fc fileConfig
	_, err := toml.DecodeFile(path, &fc)
	switch {
	case err == nil:
		if err := apply(cfg, fc); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if url := os.Getenv("KARA_WHISPER_URL"); url != "" {
		cfg.Transcribe.ServerURL = url
	}

	switch cfg.Store.Backend {
	case "file", "redis":
	default:
		return nil, fmt.Errorf("unsupported store.backend %q: use file or redis", cfg.Store.Backend)
	}

	return cfg, nil
}

// copies the values set in the file over the defaults
func apply(cfg *Config, fc fileConfig) error {
	if fc.Player.PollInterval != "" {
		d, err := time.ParseDuration(fc.Player.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid player.poll_interval %q: %w", fc.Player.PollInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("player.poll_interval must be positive, got %s", d)
		}
		cfg.Player.PollInterval = d
	}
	if fc.Player.CueDuration > 0 {
		cfg.Player.CueDuration = fc.Player.CueDuration
	}

	setString(&cfg.Transcribe.Provider, fc.Transcribe.Provider)
	setString(&cfg.Transcribe.ServerURL, fc.Transcribe.ServerURL)
	setString(&cfg.Transcribe.Model, fc.Transcribe.Model)
	setString(&cfg.Transcribe.Language, fc.Transcribe.Language)

	setString(&cfg.Assist.Provider, fc.Assist.Provider)
	setString(&cfg.Assist.Model, fc.Assist.Model)
	setString(&cfg.Assist.BaseURL, fc.Assist.BaseURL)

	setString(&cfg.Store.Backend, fc.Store.Backend)
	setString(&cfg.Store.Dir, fc.Store.Dir)
	setString(&cfg.Store.RedisAddr, fc.Store.RedisAddr)
	setString(&cfg.Store.RedisPassword, fc.Store.RedisPassword)
	if fc.Store.RedisDB != 0 {
		cfg.Store.RedisDB = fc.Store.RedisDB
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

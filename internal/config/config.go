package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hbollon/go-edlib"

	"github.com/DeprecatedLuar/veil/internal/maskread"
)

const (
	configDirName  = "veil"
	configFileName = "config.toml"

	EchoStdout = "stdout"
	EchoStderr = "stderr"

	// Minimum similarity for a "did you mean" suggestion
	suggestThreshold = 0.5
)

// Config holds prompt defaults.
type Config struct {
	Mask          string `toml:"mask"`     // single printable character, empty for no echo
	Capacity      int    `toml:"capacity"` // clamped to maskread.MaxCapacity when reading
	Prompt        string `toml:"prompt"`
	ConfirmPrompt string `toml:"confirm_prompt"`
	EchoTo        string `toml:"echo_to"`
	Native        bool   `toml:"native"` // suspend echo only and keep the terminal's own line editing

	// Keys present in the file that no field consumed
	Unknown []UnknownKey `toml:"-"`
}

// UnknownKey is a key the config file set but nothing reads.
type UnknownKey struct {
	Key        string
	Suggestion string // closest known key, empty when nothing is close
}

func (u UnknownKey) String() string {
	if u.Suggestion == "" {
		return fmt.Sprintf("unknown config key %q", u.Key)
	}
	return fmt.Sprintf("unknown config key %q (did you mean %q?)", u.Key, u.Suggestion)
}

var knownKeys = []string{"mask", "capacity", "prompt", "confirm_prompt", "echo_to", "native"}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mask:          "*",
		Capacity:      maskread.MaxCapacity,
		Prompt:        "Password: ",
		ConfirmPrompt: "Confirm password: ",
		EchoTo:        EchoStderr,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/veil/config.toml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	baseDir := os.Getenv("XDG_CONFIG_HOME")
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(baseDir, configDirName, configFileName), nil
}

// Load reads the config file at path (DefaultPath when empty) over the
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	for _, key := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, UnknownKey{
			Key:        key.String(),
			Suggestion: suggestKey(key.String()),
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if len(c.Mask) > 1 {
		return fmt.Errorf("mask must be a single character, got %q", c.Mask)
	}
	if c.Mask != "" && !maskread.Mask(c.Mask[0]).Printable() {
		return fmt.Errorf("mask must be printable ASCII, got %q", c.Mask)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.EchoTo != EchoStdout && c.EchoTo != EchoStderr {
		return fmt.Errorf("echo_to must be %q or %q, got %q", EchoStdout, EchoStderr, c.EchoTo)
	}
	return nil
}

// MaskValue converts Mask to the reader's representation.
func (c *Config) MaskValue() maskread.Mask {
	if c.Mask == "" {
		return maskread.NoEcho
	}
	return maskread.Mask(c.Mask[0])
}

// suggestKey finds the known key most similar to key.
// Uses go-edlib Damerau-Levenshtein similarity (handles transpositions)
func suggestKey(key string) string {
	// Nested keys are reported as "table.key"; compare the leaf
	leaf := key
	if i := strings.LastIndex(key, "."); i >= 0 {
		leaf = key[i+1:]
	}

	best := ""
	var bestScore float32
	for _, known := range knownKeys {
		similarity, err := edlib.StringsSimilarity(strings.ToLower(leaf), known, edlib.DamerauLevenshtein)
		if err != nil {
			continue
		}
		if similarity >= suggestThreshold && similarity > bestScore {
			best, bestScore = known, similarity
		}
	}
	return best
}

package commands

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/DeprecatedLuar/veil/internal/config"
)

// HandleConfig prints the effective configuration as TOML.
func HandleConfig(cfg *config.Config, s Streams, path string) error {
	if path != "" {
		fmt.Fprintf(s.Out, "# %s\n", path)
	}

	if err := toml.NewEncoder(s.Out).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

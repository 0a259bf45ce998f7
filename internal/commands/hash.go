package commands

import (
	"fmt"

	"github.com/DeprecatedLuar/veil/internal/config"
	"github.com/DeprecatedLuar/veil/internal/crypto"
)

// HandleHash prompts for a new password twice and prints its argon2id hash.
func HandleHash(cfg *config.Config, s Streams, passwordFile string) error {
	var password string
	var err error

	if passwordFile != "" {
		password, err = readPasswordFile(passwordFile)
	} else {
		password, err = newPrompter(cfg, s).PromptPasswordWithConfirmationCustom(cfg.Prompt, cfg.ConfirmPrompt)
	}
	if err != nil {
		return err
	}

	encoded, err := crypto.Hash([]byte(password))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fmt.Fprintln(s.Out, encoded)
	return nil
}

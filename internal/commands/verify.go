package commands

import (
	"fmt"

	"github.com/DeprecatedLuar/veil/internal/config"
	"github.com/DeprecatedLuar/veil/internal/crypto"
)

// HandleVerify prompts for a password and checks it against an encoded hash.
// A wrong password returns crypto.ErrMismatch.
func HandleVerify(cfg *config.Config, s Streams, args []string, passwordFile string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: veil verify <hash>")
	}
	encoded := args[0]

	var password string
	var err error

	if passwordFile != "" {
		password, err = readPasswordFile(passwordFile)
	} else {
		password, err = newPrompter(cfg, s).PromptPasswordCustom(cfg.Prompt)
	}
	if err != nil {
		return err
	}

	if err := crypto.Verify([]byte(password), encoded); err != nil {
		return err
	}

	fmt.Fprintln(s.Err, "Password verified")
	return nil
}

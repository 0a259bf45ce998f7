package commands

import (
	"fmt"

	"github.com/DeprecatedLuar/veil/internal/config"
)

// HandleRead prompts for a secret and writes it to stdout, for use as
// PASSWORD=$(veil read).
func HandleRead(cfg *config.Config, s Streams, passwordFile string) error {
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

	debugf("read %d-byte password", len(password))
	fmt.Fprintln(s.Out, password)
	return nil
}

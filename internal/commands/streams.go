package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DeprecatedLuar/veil/internal/config"
	"github.com/DeprecatedLuar/veil/internal/ui"
)

// Streams are the process streams a command talks to.
// Results go to Out; prompts, mask echo and warnings go to Err unless the
// config sends echo to stdout.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns stdin, stdout and stderr.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

func newPrompter(cfg *config.Config, s Streams) *ui.Prompter {
	echo := s.Err
	if cfg.EchoTo == config.EchoStdout {
		echo = s.Out
	}

	p := ui.NewPrompter(s.In, s.Err, ui.Options{
		Mask:     cfg.MaskValue(),
		Capacity: cfg.Capacity,
		Native:   cfg.Native,
		Echo:     echo,
	})
	debugf("prompter: interactive=%v native=%v capacity=%d", p.Interactive(), cfg.Native, cfg.Capacity)
	return p
}

// readPasswordFile returns the file's content without its trailing line break.
func readPasswordFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("invalid password file: %w", err)
	}

	password := strings.TrimRight(string(data), "\r\n")
	if password == "" {
		return "", fmt.Errorf("invalid password file: %s is empty", path)
	}

	debugf("read %d-byte password from file", len(password))
	return password, nil
}

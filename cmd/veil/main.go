package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/DeprecatedLuar/veil/internal/commands"
	"github.com/DeprecatedLuar/veil/internal/config"
	"github.com/DeprecatedLuar/veil/internal/crypto"
)

var (
	debugMode bool
	cfg       *config.Config
)

func main() {
	passwordFileFlag := &cli.StringFlag{
		Name:    "password-file",
		Aliases: []string{"f"},
		Usage:   "Read the password from `FILE` instead of the terminal",
	}

	app := &cli.App{
		Name:  "veil",
		Usage: "Masked password entry for scripts and terminals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: $XDG_CONFIG_HOME/veil/config.toml)",
			},
			&cli.StringFlag{
				Name:    "mask",
				Aliases: []string{"m"},
				Usage:   "Character echoed per keystroke",
			},
			&cli.BoolFlag{
				Name:  "no-mask",
				Usage: "Echo nothing while typing",
			},
			&cli.IntFlag{
				Name:  "capacity",
				Usage: "Maximum password length plus one (capped at 200)",
			},
			&cli.BoolFlag{
				Name:  "native",
				Usage: "Only suspend echo and keep the terminal's own line editing",
			},
			&cli.StringFlag{
				Name:    "prompt",
				Aliases: []string{"p"},
				Usage:   "Prompt text",
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "Enable debug output",
				Destination: &debugMode,
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "read",
				Aliases: []string{"r"},
				Usage:   "Prompt for a password and print it to stdout",
				Flags:   []cli.Flag{passwordFileFlag},
				Action: func(c *cli.Context) error {
					return commands.HandleRead(cfg, commands.StdStreams(), c.String("password-file"))
				},
			},
			{
				Name:  "hash",
				Usage: "Prompt for a new password twice and print its argon2id hash",
				Flags: []cli.Flag{passwordFileFlag},
				Action: func(c *cli.Context) error {
					return commands.HandleHash(cfg, commands.StdStreams(), c.String("password-file"))
				},
			},
			{
				Name:      "verify",
				Usage:     "Check a password against a hash (exit status 2 on mismatch)",
				ArgsUsage: "<hash>",
				Flags:     []cli.Flag{passwordFileFlag},
				Action: func(c *cli.Context) error {
					err := commands.HandleVerify(cfg, commands.StdStreams(), c.Args().Slice(), c.String("password-file"))
					if errors.Is(err, crypto.ErrMismatch) {
						return cli.Exit("Error: wrong password", 2)
					}
					return err
				},
			},
			{
				Name:  "config",
				Usage: "Print the effective configuration",
				Action: func(c *cli.Context) error {
					return commands.HandleConfig(cfg, commands.StdStreams(), configPath(c))
				},
			},
		},
		Before: func(c *cli.Context) error {
			commands.SetDebugMode(debugMode)

			loaded, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			for _, u := range loaded.Unknown {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", u)
			}

			applyFlags(c, loaded)
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			cfg = loaded
			Debugf("config: mask=%q capacity=%d native=%v echo_to=%s", cfg.Mask, cfg.Capacity, cfg.Native, cfg.EchoTo)
			return nil
		},
		Action: func(c *cli.Context) error {
			// Default action: behave like `veil read`
			if c.NArg() > 0 {
				return fmt.Errorf("unknown command %q (see 'veil help')", c.Args().First())
			}
			return commands.HandleRead(cfg, commands.StdStreams(), "")
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags lets global flags override config file values.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("mask") {
		cfg.Mask = c.String("mask")
	}
	if c.Bool("no-mask") {
		cfg.Mask = ""
	}
	if c.IsSet("capacity") {
		cfg.Capacity = c.Int("capacity")
	}
	if c.IsSet("native") {
		cfg.Native = c.Bool("native")
	}
	if c.IsSet("prompt") {
		cfg.Prompt = c.String("prompt")
	}
}

func configPath(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	path, err := config.DefaultPath()
	if err != nil {
		return ""
	}
	return path
}

func Debugf(format string, args ...any) {
	if debugMode {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

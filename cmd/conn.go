package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/pipeline"
)

func ConnCommand() *cli.Command {
	return &cli.Command{
		Name:  "conn",
		Usage: "Inspect and test backend connections",
		Subcommands: []*cli.Command{
			{
				Name:      "test",
				Usage:     "Open a connection and make one round-trip",
				ArgsUsage: "<postgres|sqlserver|mongo>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "prompt-password",
						Usage: "Read the password from the terminal instead of the config",
					},
				},
				Action: func(c *cli.Context) error {
					rt, err := setup(c)
					if err != nil {
						return err
					}
					kind, err := kindArg(c)
					if err != nil {
						return err
					}

					desc := rt.cfg.Connection(kind)
					if c.Bool("prompt-password") {
						pw, err := readPassword(fmt.Sprintf("%s password for %s: ", kind, desc.Username))
						if err != nil {
							return report(outcome.Fail(outcome.Validation("conn", "%v", err)))
						}
						desc = desc.WithPassword(pw)
					}

					return report(pipeline.WithStore(c.Context, rt.factory, kind, desc, func(s db.Store) outcome.Result {
						ok, msg := db.TestConnection(c.Context, s)
						if !ok {
							return outcome.Fail(outcome.Execution("", fmt.Errorf("%s", msg)))
						}
						return outcome.OK("%s", msg)
					}))
				},
			},
			{
				Name:      "show",
				Usage:     "Print where a backend connects, with the password hidden",
				ArgsUsage: "[postgres|sqlserver|mongo]",
				Action: func(c *cli.Context) error {
					rt, err := setup(c)
					if err != nil {
						return err
					}
					kinds := db.Kinds
					if c.NArg() > 0 {
						kind, err := kindArg(c)
						if err != nil {
							return err
						}
						kinds = []db.Kind{kind}
					}
					for _, kind := range kinds {
						d := rt.cfg.Connection(kind)
						fmt.Printf("%-10s %s (table %s)\n", kind, d.Redacted(kind), d.Table)
					}
					return nil
				},
			},
		},
	}
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--prompt-password needs an interactive terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

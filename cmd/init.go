package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/KazanKK/dataferry/internal/config"
	"github.com/KazanKK/dataferry/internal/outcome"
)

func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default dataferry.yaml in the current directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing dataferry.yaml",
			},
			&cli.StringFlag{
				Name:  "snapshot-dir",
				Usage: "Where backups are stored",
				Value: config.Default().SnapshotDir,
			},
		},
		Action: func(c *cli.Context) error {
			if _, err := os.Stat(config.FileName); err == nil && !c.Bool("force") {
				return cli.Exit(fmt.Sprintf("%s already exists (use --force to overwrite)", config.FileName), exitCode(outcome.KindValidation))
			}

			cfg := config.Default()
			cfg.SnapshotDir = c.String("snapshot-dir")
			if err := cfg.Save(config.FileName); err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
				return fmt.Errorf("creating snapshot directory: %w", err)
			}

			fmt.Printf("Created %s with snapshot directory: %s\n", config.FileName, cfg.SnapshotDir)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/KazanKK/dataferry/cmd"
)

func main() {
	app := &cli.App{
		Name:  "dataferry",
		Usage: "Run local database containers and move tabular data between Postgres, SQL Server and MongoDB",
		Flags: cmd.GlobalFlags(),
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.ServiceCommand(),
			cmd.ConnCommand(),
			cmd.PreviewCommand(),
			cmd.ExportCommand(),
			cmd.MigrateCommand(),
			cmd.GenerateCommand(),
			cmd.BackupCommand(),
			cmd.RestoreCommand(),
			cmd.SnapshotsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/pipeline"
	snapshot "github.com/KazanKK/dataferry/snapshots"
)

func BackupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Save a table to a snapshot directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Backend to back up"},
			&cli.StringFlag{Name: "table", Usage: "Table to back up (default: the connection's table)"},
			&cli.StringFlag{Name: "dir", Usage: "Snapshot directory (default: a new one under snapshot_dir)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			kind, err := kindFlag(c, "from")
			if err != nil {
				return err
			}

			desc := rt.connection(kind, c.String("table"))
			dir := c.String("dir")
			if dir == "" {
				dir = snapshot.NewDir(rt.cfg.Path(rt.cfg.SnapshotDir), kind, desc.Table)
			}

			return report(pipeline.WithStore(c.Context, rt.factory, kind, desc, func(s db.Store) outcome.Result {
				_, res := snapshot.Backup(c.Context, rt.exporter, s, desc.Table, dir)
				return res
			}))
		},
	}
}

func RestoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Replace a table with the contents of a snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Required: true, Usage: "Snapshot directory"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "Backend to restore into"},
			&cli.StringFlag{Name: "table", Usage: "Destination table (default: the table the snapshot was taken from)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			kind, err := kindFlag(c, "to")
			if err != nil {
				return err
			}

			return report(pipeline.WithStore(c.Context, rt.factory, kind, rt.cfg.Connection(kind), func(s db.Store) outcome.Result {
				return snapshot.Restore(c.Context, rt.exporter, c.String("dir"), s, c.String("table"))
			}))
		},
	}
}

func SnapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshots",
		Usage: "List snapshots under snapshot_dir",
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			root := rt.cfg.Path(rt.cfg.SnapshotDir)
			list, err := snapshot.List(root)
			if err != nil {
				return cli.Exit(err.Error(), exitCode(outcome.KindExecution))
			}
			if len(list) == 0 {
				fmt.Println("No snapshots found.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Directory", "Backend", "Table", "Rows", "Created"})
			table.SetBorder(false)
			table.SetColumnSeparator(" ")
			for _, m := range list {
				table.Append([]string{
					m.Dir,
					m.Kind,
					m.Table,
					fmt.Sprint(m.Rows),
					m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			table.Render()
			return nil
		},
	}
}

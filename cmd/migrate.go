package cmd

import (
	"github.com/urfave/cli/v2"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/pipeline"
)

func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Copy a whole table from one backend to another, replacing the destination",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Source backend"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "Destination backend"},
			&cli.StringFlag{Name: "from-table", Usage: "Source table (default: the source connection's table)"},
			&cli.StringFlag{Name: "to-table", Usage: "Destination table (default: the destination connection's table)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			srcKind, err := kindFlag(c, "from")
			if err != nil {
				return err
			}
			dstKind, err := kindFlag(c, "to")
			if err != nil {
				return err
			}

			src := rt.connection(srcKind, c.String("from-table"))
			dst := rt.connection(dstKind, c.String("to-table"))
			migrator := pipeline.NewMigrator(rt.exporter, rt.logger)

			return report(pipeline.WithStores(c.Context, rt.factory, srcKind, src, dstKind, dst,
				func(from, to db.Store) outcome.Result {
					return migrator.Migrate(c.Context, from, src.Table, to, dst.Table)
				}))
		},
	}
}

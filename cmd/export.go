package cmd

import (
	"github.com/urfave/cli/v2"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/pipeline"
)

func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write a CSV dataset into a backend table or collection",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "csv", Required: true, Usage: "CSV file with a header row"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "Destination backend (postgres, sqlserver, mongo)"},
			&cli.StringFlag{Name: "table", Usage: "Destination table (default: the connection's table)"},
			&cli.StringFlag{Name: "mode", Value: "replace", Usage: "replace, or append to create-if-missing and insert"},
		}, transformFlags()...),
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			kind, err := kindFlag(c, "to")
			if err != nil {
				return err
			}
			mode, err := pipeline.ParseMode(c.String("mode"))
			if err != nil {
				return report(outcome.Fail(outcome.Validation("export", "%v", err)))
			}
			ds, err := loadDataset(c)
			if err != nil {
				return err
			}

			desc := rt.connection(kind, c.String("table"))
			return report(pipeline.WithStore(c.Context, rt.factory, kind, desc, func(s db.Store) outcome.Result {
				return rt.exporter.Export(c.Context, ds, s, desc.Table, mode)
			}))
		},
	}
}

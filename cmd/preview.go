package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/KazanKK/dataferry/internal/dataset"
)

func PreviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Show the first rows of a CSV dataset after transforms",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "csv", Required: true, Usage: "CSV file with a header row"},
			&cli.IntFlag{Name: "rows", Usage: "Rows to show (default: preview_rows from config)"},
		}, transformFlags()...),
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			ds, err := loadDataset(c)
			if err != nil {
				return err
			}

			rows := rt.cfg.PreviewRows
			if c.IsSet("rows") {
				rows = c.Int("rows")
			}
			dataset.Render(os.Stdout, ds, rows)
			return nil
		},
	}
}

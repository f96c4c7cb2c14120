package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/KazanKK/dataferry/internal/dataset"
	"github.com/KazanKK/dataferry/internal/outcome"
)

func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write a CSV of fake rows for trying out exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "columns",
				Required: true,
				Usage:    `Column list, e.g. "id:int,name:string,rating:float?" (? marks nullable)`,
			},
			&cli.IntFlag{Name: "rows", Value: 100, Usage: "Number of rows"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "CSV file to write"},
			&cli.Int64Flag{Name: "seed", Usage: "Random seed (default: current time)"},
		},
		Action: func(c *cli.Context) error {
			if _, err := setup(c); err != nil {
				return err
			}
			specs, err := dataset.ParseColumnSpecs(c.String("columns"))
			if err != nil {
				return report(outcome.Fail(outcome.Validation("generate", "%v", err)))
			}
			if c.Int("rows") < 0 {
				return report(outcome.Fail(outcome.Validation("generate", "--rows must not be negative")))
			}

			seed := c.Int64("seed")
			if !c.IsSet("seed") {
				seed = time.Now().UnixNano()
			}
			ds, err := dataset.Generate(specs, c.Int("rows"), seed)
			if err != nil {
				return report(outcome.Fail(outcome.Validation("generate", "%v", err)))
			}
			if err := dataset.SaveCSV(c.String("out"), ds); err != nil {
				return report(outcome.Fail(outcome.Execution("generate", err)))
			}

			fmt.Printf("Successfully generated %d rows into %s\n", ds.Len(), c.String("out"))
			return nil
		},
	}
}

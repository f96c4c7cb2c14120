package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/config"
	"github.com/KazanKK/dataferry/internal/dataset"
	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/pipeline"
)

// GlobalFlags are accepted before any command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to dataferry.yaml (default: search upward from the working directory)",
			EnvVars: []string{"DATAFERRY_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log debug output, including generated SQL",
		},
	}
}

// runtime is what every command needs, built once per invocation.
type runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	factory  *db.Factory
	exporter *pipeline.Exporter
}

func setup(c *cli.Context) (*runtime, error) {
	logger := newLogger(c.Bool("verbose"))

	cfg, path, err := config.Resolve(c.String("config"))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("loading config: %v", err), exitCode(outcome.KindValidation))
	}
	if path != "" {
		logger.Debug("config loaded", "path", path)
	} else {
		logger.Debug("no config file found, using defaults", "dir", cfg.Dir())
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		factory:  db.NewFactory(0, logger),
		exporter: pipeline.NewExporter(logger),
	}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitCode gives each failure kind its own process exit status.
func exitCode(kind outcome.Kind) int {
	switch kind {
	case outcome.KindValidation:
		return 2
	case outcome.KindExecution:
		return 3
	default:
		return 4
	}
}

// report prints a successful result, or turns a failed one into an exit.
func report(res outcome.Result) error {
	if !res.Success {
		return cli.Exit(res.String(), exitCode(res.Kind))
	}
	fmt.Println(res.Message)
	return nil
}

func kindFlag(c *cli.Context, name string) (db.Kind, error) {
	v := c.String(name)
	if v == "" {
		return 0, cli.Exit(fmt.Sprintf("--%s is required", name), exitCode(outcome.KindValidation))
	}
	return parseKind(v)
}

func kindArg(c *cli.Context) (db.Kind, error) {
	if c.NArg() < 1 {
		return 0, cli.Exit("missing backend argument (postgres, sqlserver or mongo)", exitCode(outcome.KindValidation))
	}
	return parseKind(c.Args().First())
}

func parseKind(s string) (db.Kind, error) {
	kind, err := db.ParseKind(s)
	if err != nil {
		return 0, cli.Exit(err.Error(), exitCode(outcome.KindValidation))
	}
	return kind, nil
}

// connection picks kind's descriptor, pointed at table when one is given.
func (r *runtime) connection(kind db.Kind, table string) db.ConnectionDescriptor {
	d := r.cfg.Connection(kind)
	if table != "" {
		d = d.WithTable(table)
	}
	return d
}

func transformFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "select", Usage: "Comma-separated columns to keep"},
		&cli.StringFlag{Name: "drop", Usage: "Comma-separated columns to remove"},
		&cli.StringFlag{Name: "fillna", Usage: "Value to put in empty cells"},
		&cli.BoolFlag{Name: "dedupe", Usage: "Drop duplicate rows"},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadDataset reads --csv and applies the transform flags in a fixed order:
// select, drop, fillna, dedupe.
func loadDataset(c *cli.Context) (*dataset.Dataset, error) {
	path := c.String("csv")
	if path == "" {
		return nil, cli.Exit("--csv is required", exitCode(outcome.KindValidation))
	}
	ds, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitCode(outcome.KindValidation))
	}

	if cols := splitList(c.String("select")); len(cols) > 0 {
		if ds, err = ds.Select(cols...); err != nil {
			return nil, cli.Exit(err.Error(), exitCode(outcome.KindValidation))
		}
	}
	if cols := splitList(c.String("drop")); len(cols) > 0 {
		ds = ds.Drop(cols...)
	}
	if c.IsSet("fillna") {
		ds = ds.FillNA(dataset.ParseValue(c.String("fillna")))
	}
	if c.Bool("dedupe") {
		ds = ds.DropDuplicates()
	}
	return ds, nil
}

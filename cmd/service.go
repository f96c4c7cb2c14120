package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/KazanKK/dataferry/internal/compose"
	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/process"
)

func ServiceCommand() *cli.Command {
	return &cli.Command{
		Name:  "service",
		Usage: "Start, stop and inspect the containerized databases",
		Subcommands: []*cli.Command{
			{
				Name:      "up",
				Usage:     "Bring a service up in the background",
				ArgsUsage: "<postgres|sqlserver|mongo>",
				Action: func(c *cli.Context) error {
					return lifecycle(c, (*compose.Manager).Start)
				},
			},
			{
				Name:      "down",
				Usage:     "Bring a service down",
				ArgsUsage: "<postgres|sqlserver|mongo>",
				Action: func(c *cli.Context) error {
					return lifecycle(c, (*compose.Manager).Stop)
				},
			},
			{
				Name:      "status",
				Usage:     "Show whether a service is running",
				ArgsUsage: "[postgres|sqlserver|mongo]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Show every configured service"},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("all") || c.NArg() == 0 {
						return statusAll(c)
					}
					return lifecycle(c, (*compose.Manager).Status)
				},
			},
			{
				Name:  "check",
				Usage: "Verify that the compose tool is installed",
				Action: func(c *cli.Context) error {
					rt, err := setup(c)
					if err != nil {
						return err
					}
					return report(rt.manager().CheckTool(c.Context))
				},
			},
		},
	}
}

func (r *runtime) manager() *compose.Manager {
	runner := process.NewExecRunner(r.cfg.CommandTimeout, r.logger)
	return compose.NewManager(runner, r.cfg.Tool, r.logger)
}

type lifecycleOp func(*compose.Manager, context.Context, compose.ServiceDescriptor) compose.Report

func lifecycle(c *cli.Context, op lifecycleOp) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	kind, err := kindArg(c)
	if err != nil {
		return err
	}
	d, err := rt.cfg.Service(kind)
	if err != nil {
		return report(outcome.Fail(outcome.Validation("service", "%v", err)))
	}

	r := op(rt.manager(), c.Context, d)
	fmt.Printf("%s: %s\n", d, r.State)
	return report(r.Result)
}

func statusAll(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	services, err := rt.cfg.AllServices()
	if err != nil {
		return report(outcome.Fail(outcome.Validation("service", "%v", err)))
	}

	reports := rt.manager().StatusAll(c.Context, services)
	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Service", "State", "Containers", "Message"})
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetAutoWrapText(false)

	failed := false
	for _, name := range names {
		r := reports[name]
		failed = failed || !r.Success
		table.Append([]string{name, r.State.String(), fmt.Sprint(len(r.Containers)), r.Message})
	}
	table.Render()

	if failed {
		return cli.Exit("", exitCode(outcome.KindRemote))
	}
	return nil
}

// Package compose drives containerized services through `<tool> compose`
// up, down and ps, reporting results instead of raising.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/KazanKK/dataferry/internal/outcome"
	"github.com/KazanKK/dataferry/internal/process"
)

// DefaultTool is the container CLI invoked as `<tool> compose ...`.
const DefaultTool = "docker"

// Report is the result of a lifecycle operation together with the state
// observed by the status query that followed it.
type Report struct {
	outcome.Result
	State      State
	Containers []Container
}

// Manager runs lifecycle operations. It keeps no per-service state: every
// Status call re-derives ground truth from the external command, so a
// Manager is safe for concurrent use.
type Manager struct {
	runner process.Runner
	tool   string
	logger *slog.Logger
}

// NewManager builds a Manager. An empty tool means DefaultTool.
func NewManager(runner process.Runner, tool string, logger *slog.Logger) *Manager {
	if tool == "" {
		tool = DefaultTool
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{runner: runner, tool: tool, logger: logger}
}

// Start brings the service's containers up detached, then refreshes status.
func (m *Manager) Start(ctx context.Context, d ServiceDescriptor) Report {
	return m.mutate(ctx, d, "started", "up", "-d")
}

// Stop brings the service's containers down, then refreshes status.
func (m *Manager) Stop(ctx context.Context, d ServiceDescriptor) Report {
	return m.mutate(ctx, d, "stopped", "down")
}

// mutate runs a state-changing compose verb. The reported State always
// comes from a fresh status query: `up` can exit 0 while containers still
// fail their health checks.
func (m *Manager) mutate(ctx context.Context, d ServiceDescriptor, done string, verb ...string) Report {
	log := m.logger.With("service", d.String(), "operation", verb[0])

	if err := ValidateManifest(d.manifestPath); err != nil {
		log.Error("manifest validation failed", "error", err)
		return Report{Result: outcome.Fail(err), State: StateUnknown}
	}

	log.Info("running compose", "dir", d.WorkDir())
	res, err := m.runner.Run(ctx, d.WorkDir(), m.composeArgs(d, verb...)...)

	var result outcome.Result
	switch {
	case err != nil:
		log.Error("compose could not be launched", "error", err)
		result = outcome.Fail(err)
	case !res.Success():
		log.Error("compose failed", "exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
		result = outcome.Fail(outcome.Remote("", errors.New(commandFailure(res))))
	default:
		log.Info("compose succeeded")
		result = outcome.OK("%s %s", d.String(), done)
	}

	status := m.Status(ctx, d)
	return Report{Result: result, State: status.State, Containers: status.Containers}
}

// Status runs `compose ps` and derives the service's State. A launch failure
// leaves the state Unknown; output that cannot be parsed is an Error state.
func (m *Manager) Status(ctx context.Context, d ServiceDescriptor) Report {
	log := m.logger.With("service", d.String(), "operation", "ps")

	if err := ValidateManifest(d.manifestPath); err != nil {
		log.Error("manifest validation failed", "error", err)
		return Report{Result: outcome.Fail(err), State: StateUnknown}
	}

	res, err := m.runner.Run(ctx, d.WorkDir(), m.composeArgs(d, "ps", "--all", "--format", "json")...)
	if err != nil {
		log.Error("compose could not be launched", "error", err)
		return Report{Result: outcome.Fail(err), State: StateUnknown}
	}
	if !res.Success() {
		log.Warn("compose ps failed", "exit_code", res.ExitCode)
		return Report{
			Result: outcome.Fail(outcome.Remote("", errors.New(commandFailure(res)))),
			State:  StateError,
		}
	}

	containers, err := parseContainers(res.Stdout)
	if err != nil {
		log.Warn("unparseable compose ps output", "error", err)
		return Report{
			Result: outcome.Fail(outcome.Remote("status", err)),
			State:  StateError,
		}
	}

	state, matched := deriveState(d, containers)
	log.Debug("status derived", "state", state, "containers", len(matched))
	return Report{
		Result:     outcome.OK("%s is %s", d.String(), strings.ToLower(state.String())),
		State:      state,
		Containers: matched,
	}
}

// StatusAll queries every service concurrently. Status is side-effect free,
// so fan-out needs no coordination beyond collecting results.
func (m *Manager) StatusAll(ctx context.Context, services map[string]ServiceDescriptor) map[string]Report {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		reports = make(map[string]Report, len(services))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name, d := name, services[name]
		g.Go(func() error {
			r := m.Status(gctx, d)
			mu.Lock()
			reports[name] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// CheckTool verifies that `<tool> compose` is installed and returns its
// version line as the message.
func (m *Manager) CheckTool(ctx context.Context) outcome.Result {
	res, err := m.runner.Run(ctx, "", m.tool, "compose", "version")
	if err != nil {
		return outcome.Fail(err)
	}
	if !res.Success() {
		return outcome.Fail(outcome.Remote("", fmt.Errorf("%s compose is not available: %s", m.tool, commandFailure(res))))
	}
	m.logger.Info("compose detected", "version", strings.TrimSpace(res.Stdout))
	return outcome.OK("%s", strings.TrimSpace(res.Stdout))
}

func (m *Manager) composeArgs(d ServiceDescriptor, verb ...string) []string {
	args := []string{m.tool, "compose", "-f", d.manifestPath}
	return append(args, verb...)
}

func commandFailure(res process.CommandResult) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(res.Stdout); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s exited with code %d", res.Command, res.ExitCode)
}

package compose

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
)

// State is the run state of a managed service, always derived from a fresh
// status query.
type State int

const (
	StateUnknown State = iota
	StateStopped
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "Unknown"
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Container is one entry of `compose ps --format json`.
type Container struct {
	ID       string `json:"ID"`
	Name     string `json:"Name"`
	Service  string `json:"Service"`
	Project  string `json:"Project"`
	State    string `json:"State"`
	Health   string `json:"Health"`
	Status   string `json:"Status"`
	ExitCode int    `json:"ExitCode"`
}

// parseContainers accepts both shapes compose has emitted over time: a
// single JSON array, or one JSON object per line.
func parseContainers(output string) ([]Container, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var containers []Container
		if err := json.Unmarshal([]byte(trimmed), &containers); err != nil {
			return nil, fmt.Errorf("parsing container list: %w", err)
		}
		return containers, nil
	}

	var containers []Container
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c Container
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("parsing container entry %q: %w", line, err)
		}
		containers = append(containers, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading container list: %w", err)
	}
	return containers, nil
}

// containerState maps a single container's state and health.
func containerState(c Container) State {
	switch strings.ToLower(c.State) {
	case "running":
		if strings.EqualFold(c.Health, "unhealthy") {
			return StateError
		}
		return StateRunning
	case "restarting", "dead":
		return StateError
	case "created", "exited", "paused", "removing":
		return StateStopped
	default:
		return StateError
	}
}

// deriveState picks the containers belonging to d and folds their states.
// No matching container means the service is stopped.
func deriveState(d ServiceDescriptor, containers []Container) (State, []Container) {
	matched := make([]Container, 0, len(containers))
	for _, c := range containers {
		if belongsTo(d, c) {
			matched = append(matched, c)
		}
	}

	state := StateStopped
	for _, c := range matched {
		switch containerState(c) {
		case StateError:
			return StateError, matched
		case StateRunning:
			state = StateRunning
		}
	}
	return state, matched
}

func belongsTo(d ServiceDescriptor, c Container) bool {
	if d.serviceName == "" && d.containerName == "" {
		return true
	}
	if d.serviceName != "" && c.Service == d.serviceName {
		return true
	}
	if d.containerName != "" && strings.TrimPrefix(c.Name, "/") == d.containerName {
		return true
	}
	return false
}

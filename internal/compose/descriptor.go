package compose

import (
	"fmt"
	"path/filepath"
)

// ServiceDescriptor identifies one managed containerized service. It is
// immutable once built; use NewServiceDescriptor.
type ServiceDescriptor struct {
	manifestPath  string
	containerName string
	serviceName   string
}

// NewServiceDescriptor resolves manifestPath to an absolute path. The
// manifest itself is not checked here; every lifecycle operation validates
// it before touching it.
func NewServiceDescriptor(manifestPath, containerName, serviceName string) (ServiceDescriptor, error) {
	if manifestPath == "" {
		return ServiceDescriptor{}, fmt.Errorf("manifest path is required")
	}
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return ServiceDescriptor{}, fmt.Errorf("resolving manifest path %s: %w", manifestPath, err)
	}
	return ServiceDescriptor{
		manifestPath:  abs,
		containerName: containerName,
		serviceName:   serviceName,
	}, nil
}

func (d ServiceDescriptor) ManifestPath() string  { return d.manifestPath }
func (d ServiceDescriptor) ContainerName() string { return d.containerName }
func (d ServiceDescriptor) ServiceName() string   { return d.serviceName }

// WorkDir is the directory lifecycle commands run in.
func (d ServiceDescriptor) WorkDir() string { return filepath.Dir(d.manifestPath) }

func (d ServiceDescriptor) String() string {
	name := d.serviceName
	if name == "" {
		name = d.containerName
	}
	if name == "" {
		name = filepath.Base(d.WorkDir())
	}
	return name
}

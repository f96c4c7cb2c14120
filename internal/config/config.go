// Package config loads dataferry.yaml: which container tool to drive, where
// each service's compose manifest lives and how to reach each backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/compose"
)

const (
	FileName      = "dataferry.yaml"
	globalDirName = ".dataferry"
)

// ServiceConfig locates one compose-managed service.
type ServiceConfig struct {
	Manifest  string `yaml:"manifest"`
	Container string `yaml:"container"`
	Service   string `yaml:"service"`
}

type Services struct {
	Postgres  ServiceConfig `yaml:"postgres"`
	SQLServer ServiceConfig `yaml:"sqlserver"`
	Mongo     ServiceConfig `yaml:"mongo"`
}

type Connections struct {
	Postgres  db.ConnectionDescriptor `yaml:"postgres"`
	SQLServer db.ConnectionDescriptor `yaml:"sqlserver"`
	Mongo     db.ConnectionDescriptor `yaml:"mongo"`
}

// Config is passed by value into whatever needs it; there is no global copy.
type Config struct {
	Tool           string        `yaml:"tool"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	PreviewRows    int           `yaml:"preview_rows"`
	SnapshotDir    string        `yaml:"snapshot_dir"`
	Services       Services      `yaml:"services"`
	Connections    Connections   `yaml:"connections"`

	// dir is where relative paths are resolved from.
	dir string
}

// Default mirrors the bundled compose manifests under deploy/.
func Default() Config {
	return Config{
		Tool:           compose.DefaultTool,
		CommandTimeout: 2 * time.Minute,
		PreviewRows:    100,
		SnapshotDir:    filepath.Join(globalDirName, "snapshots"),
		Services: Services{
			Postgres:  ServiceConfig{Manifest: "deploy/postgres/docker-compose.yml", Container: "postgres_container", Service: "postgres"},
			SQLServer: ServiceConfig{Manifest: "deploy/sqlserver/docker-compose.yml", Container: "sqlserver_container", Service: "sqlserver"},
			Mongo:     ServiceConfig{Manifest: "deploy/mongo/docker-compose.yml", Container: "mongo_container", Service: "mongo"},
		},
		Connections: Connections{
			Postgres: db.ConnectionDescriptor{
				Host: "127.0.0.1", Port: 5433, Database: "my_database",
				Username: "my_user", Password: "my_password", Table: "anime_list",
			},
			SQLServer: db.ConnectionDescriptor{
				Host: "127.0.0.1", Port: 1433, Database: "TestBD",
				Username: "sa", Password: "Dataferry!Passw0rd", Table: "anime_list",
			},
			Mongo: db.ConnectionDescriptor{
				Host: "127.0.0.1", Port: 27017, Database: "dataferry", Table: "anime_list",
			},
		},
	}
}

// FindConfigFile looks for dataferry.yaml in start and each of its parents,
// then falls back to ~/.dataferry/config.yaml.
func FindConfigFile(start string) (string, error) {
	dir := start
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	globalConfig := filepath.Join(homeDir, globalDirName, "config.yaml")
	if _, err := os.Stat(globalConfig); err == nil {
		return globalConfig, nil
	}

	return "", fmt.Errorf("no %s found in project or ~/%s/config.yaml", FileName, globalDirName)
}

// Load reads path over the defaults, then applies password overrides from
// DATAFERRY_<KIND>_PASSWORD.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return cfg, fmt.Errorf("resolving %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(abs)
	cfg = cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the explicit path when given, else the discovered config
// file, else the defaults rooted at the working directory.
func Resolve(explicit string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return Config{}, "", fmt.Errorf("getting working directory: %w", err)
	}
	if path, err := FindConfigFile(wd); err == nil {
		cfg, err := Load(path)
		return cfg, path, err
	}
	cfg := Default().applyEnv(os.LookupEnv)
	cfg.dir = wd
	return cfg, "", nil
}

func (c Config) applyEnv(lookup func(string) (string, bool)) Config {
	for _, kind := range db.Kinds {
		name := "DATAFERRY_" + strings.ToUpper(kind.String()) + "_PASSWORD"
		if pw, ok := lookup(name); ok {
			c = c.WithConnection(kind, c.Connection(kind).WithPassword(pw))
		}
	}
	return c
}

// Validate checks the settings that have no safe fallback.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Tool) == "" {
		return fmt.Errorf("tool must not be empty")
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative")
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("preview_rows must not be negative")
	}
	return nil
}

// Save writes c as YAML to path.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("creating yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Dir is the directory relative paths in c are resolved against.
func (c Config) Dir() string { return c.dir }

// WithDir returns a copy of c resolving relative paths against dir.
func (c Config) WithDir(dir string) Config {
	c.dir = dir
	return c
}

// Path resolves p against the config directory unless it is absolute.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Connection returns the descriptor for kind.
func (c Config) Connection(kind db.Kind) db.ConnectionDescriptor {
	switch kind {
	case db.KindPostgres:
		return c.Connections.Postgres
	case db.KindSQLServer:
		return c.Connections.SQLServer
	case db.KindMongo:
		return c.Connections.Mongo
	default:
		return db.ConnectionDescriptor{}
	}
}

// WithConnection returns a copy of c with kind's descriptor replaced.
func (c Config) WithConnection(kind db.Kind, d db.ConnectionDescriptor) Config {
	switch kind {
	case db.KindPostgres:
		c.Connections.Postgres = d
	case db.KindSQLServer:
		c.Connections.SQLServer = d
	case db.KindMongo:
		c.Connections.Mongo = d
	}
	return c
}

func (c Config) serviceConfig(kind db.Kind) (ServiceConfig, error) {
	switch kind {
	case db.KindPostgres:
		return c.Services.Postgres, nil
	case db.KindSQLServer:
		return c.Services.SQLServer, nil
	case db.KindMongo:
		return c.Services.Mongo, nil
	default:
		return ServiceConfig{}, fmt.Errorf("unsupported backend %s", kind)
	}
}

// Service builds the descriptor for kind's compose service.
func (c Config) Service(kind db.Kind) (compose.ServiceDescriptor, error) {
	sc, err := c.serviceConfig(kind)
	if err != nil {
		return compose.ServiceDescriptor{}, err
	}
	return compose.NewServiceDescriptor(c.Path(sc.Manifest), sc.Container, sc.Service)
}

// AllServices returns a descriptor per configured backend, keyed by name.
// Backends with no manifest configured are left out.
func (c Config) AllServices() (map[string]compose.ServiceDescriptor, error) {
	out := make(map[string]compose.ServiceDescriptor, len(db.Kinds))
	for _, kind := range db.Kinds {
		sc, _ := c.serviceConfig(kind)
		if sc.Manifest == "" {
			continue
		}
		d, err := c.Service(kind)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		out[kind.String()] = d
	}
	return out, nil
}

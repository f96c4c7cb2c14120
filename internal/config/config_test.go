package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	db "github.com/KazanKK/dataferry/database"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
tool: podman
command_timeout: 45s
connections:
  postgres:
    host: db.internal
    port: 6543
    database: etl
    username: loader
    table: shows
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "podman", cfg.Tool)
	assert.Equal(t, 45*time.Second, cfg.CommandTimeout)
	assert.Equal(t, 100, cfg.PreviewRows)
	assert.Equal(t, "db.internal", cfg.Connection(db.KindPostgres).Host)
	assert.Equal(t, "shows", cfg.Connection(db.KindPostgres).Table)
	assert.Equal(t, 1433, cfg.Connection(db.KindSQLServer).Port)
	assert.Equal(t, dir, cfg.Dir())
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"empty tool":       "tool: \"\"\n",
		"negative timeout": "command_timeout: -1s\n",
		"bad yaml":         "tool: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Default().Save(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Connections, cfg.Connections)
	assert.Equal(t, Default().CommandTimeout, cfg.CommandTimeout)
}

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(want, []byte("tool: docker\n"), 0o644))

	got, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestServiceResolvesManifestAgainstConfigDir(t *testing.T) {
	cfg := Default().WithDir("/srv/etl")

	d, err := cfg.Service(db.KindSQLServer)
	require.NoError(t, err)
	assert.Equal(t, "/srv/etl/deploy/sqlserver/docker-compose.yml", d.ManifestPath())
	assert.Equal(t, "sqlserver_container", d.ContainerName())

	_, err = cfg.Service(db.Kind(0))
	assert.Error(t, err)

	all, err := cfg.AllServices()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Contains(t, all, "mongo")
}

func TestWithConnectionReplacesWholeValue(t *testing.T) {
	base := Default()
	next := base.WithConnection(db.KindMongo, db.ConnectionDescriptor{Host: "mongo.local", Port: 27018, Database: "x"})

	assert.Equal(t, "mongo.local", next.Connection(db.KindMongo).Host)
	assert.Equal(t, "", next.Connection(db.KindMongo).Table)
	assert.Equal(t, "127.0.0.1", base.Connection(db.KindMongo).Host)
}

func TestApplyEnvOverridesPasswords(t *testing.T) {
	env := map[string]string{"DATAFERRY_SQLSERVER_PASSWORD": "from-env"}
	cfg := Default().applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "from-env", cfg.Connection(db.KindSQLServer).Password)
	assert.Equal(t, "my_password", cfg.Connection(db.KindPostgres).Password)
}

type composeFile struct {
	Services map[string]struct {
		ContainerName string            `yaml:"container_name"`
		Environment   map[string]string `yaml:"environment"`
		Ports         []string          `yaml:"ports"`
		DependsOn     map[string]struct {
			Condition string `yaml:"condition"`
		} `yaml:"depends_on"`
		Command []string `yaml:"command"`
	} `yaml:"services"`
}

func readCompose(t *testing.T, kind db.Kind) composeFile {
	t.Helper()
	sc, err := Default().serviceConfig(kind)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join("..", "..", sc.Manifest))
	require.NoError(t, err)
	var f composeFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	return f
}

func TestBundledManifestsMatchDefaults(t *testing.T) {
	cfg := Default()
	for _, kind := range db.Kinds {
		t.Run(kind.String(), func(t *testing.T) {
			sc, err := cfg.serviceConfig(kind)
			require.NoError(t, err)
			f := readCompose(t, kind)
			svc, ok := f.Services[sc.Service]
			require.True(t, ok, "service %s", sc.Service)
			assert.Equal(t, sc.Container, svc.ContainerName)
			require.NotEmpty(t, svc.Ports)
			assert.True(t, strings.HasPrefix(svc.Ports[0], fmt.Sprintf("%d:", cfg.Connection(kind).Port)), svc.Ports[0])
		})
	}
}

func TestBundledSQLServerCreatesDefaultDatabase(t *testing.T) {
	f := readCompose(t, db.KindSQLServer)
	create, ok := f.Services["sqlserver-init"]
	require.True(t, ok)

	assert.Equal(t, "service_healthy", create.DependsOn["sqlserver"].Condition)
	want := Default().Connection(db.KindSQLServer).Database
	assert.Equal(t, "${MSSQL_DATABASE:-"+want+"}", create.Environment["MSSQL_DATABASE"])
	require.Len(t, create.Command, 1)
	assert.Contains(t, create.Command[0], "CREATE DATABASE [$$MSSQL_DATABASE]")
}

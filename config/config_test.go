package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/fingerbot/actuator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("STORAGE_PATH", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "log", cfg.Driver.Kind)
}

func TestLoad(t *testing.T) {
	t.Setenv("STORAGE_PATH", "")
	path := writeConfig(t, `
storage_dir: /srv/files
device_name: flute
driver:
  kind: serial
  serial_port: /dev/ttyUSB0
motors:
  - id: 1
    notes: [C4, D4]
  - id: 2
    notes: [E]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("/srv/files", cfg.StorageDir)
	assert.Equal("flute", cfg.DeviceName)
	assert.Equal(":8080", cfg.HTTPAddr)
	assert.Equal("serial", cfg.Driver.Kind)
	assert.Equal(115200, cfg.Driver.Baud)
	assert.Equal([]actuator.MotorMapping{
		{ID: 1, Notes: []string{"C4", "D4"}},
		{ID: 2, Notes: []string{"E"}},
	}, cfg.Motors)
}

func TestStoragePathEnvWins(t *testing.T) {
	t.Setenv("STORAGE_PATH", "/from/env")
	cfg, err := Load(writeConfig(t, "storage_dir: /from/file\n"))
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.StorageDir)
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	t.Setenv("STORAGE_PATH", "")
	bad := map[string]string{
		"unknown driver":    "driver: {kind: laser}\n",
		"serial needs port": "driver: {kind: serial}\n",
		"midi needs port":   "driver: {kind: midi}\n",
		"duplicate motors":  "motors: [{id: 1, notes: [C]}, {id: 1, notes: [D]}]\n",
		"not yaml":          "driver: [\n",
	}
	for name, body := range bad {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

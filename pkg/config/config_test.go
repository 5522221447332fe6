package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/rpm-simulator/pkg/formula"
)

func TestLoad_MissingFile(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
	assert.Equal(t, formula.DefaultThresholds, conf.Thresholds)
}

func TestLoad_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"Storage": {"Backend": "sqlite", "Path": "/tmp/state.db"},
		"Thresholds": {"yellow": 3500, "red": 6500},
		"Pushover": {"Token": "abc", "User": "def"}
	}`), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageConfig{Backend: BackendSQLite, Path: "/tmp/state.db"}, conf.Storage)
	assert.Equal(t, formula.Thresholds{Yellow: 3500, Red: 6500}, conf.Thresholds)
	assert.Equal(t, 8080, conf.Web.Port)
	assert.True(t, conf.Pushover.Enabled())
	assert.False(t, conf.InfluxDb.Enabled())
}

func TestDecode_Invalid(t *testing.T) {
	tests := []string{
		`not json`,
		`{"Storage": {"Backend": "redis"}}`,
		`{"Thresholds": {"yellow": 6000, "red": 5000}}`,
		`{"Thresholds": {"yellow": 0, "red": 5000}}`,
		`{"Web": {"Port": 70000}}`,
	}
	for _, given := range tests {
		_, err := Decode(strings.NewReader(given))
		assert.Error(t, err, given)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestRedacted(t *testing.T) {
	conf := Default()
	conf.InfluxDb = InfluxDbConfig{Address: "http://influx:8086", Username: "u", Password: "secret", Database: "rpm"}
	conf.Pushover = PushoverConfig{Token: "tok", User: "usr"}

	r := conf.Redacted()
	assert.Equal(t, "<redacted>", r.InfluxDb.Password)
	assert.Equal(t, "<redacted>", r.Pushover.Token)
	assert.Equal(t, "u", r.InfluxDb.Username)
	assert.Equal(t, "secret", conf.InfluxDb.Password)
	assert.Equal(t, "", Default().Redacted().Pushover.Token)
}

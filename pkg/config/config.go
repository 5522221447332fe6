package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/tosih/rpm-simulator/pkg/formula"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Configuration struct {
	Thresholds formula.Thresholds
	Storage    StorageConfig
	// CatalogDir overrides the bundled vehicle catalog with a directory holding
	// makes.json and the per-make datasets.
	CatalogDir string
	Web        WebConfig
	InfluxDb   InfluxDbConfig
	Pushover   PushoverConfig
}

type StorageConfig struct {
	Backend string
	Path    string
}

type WebConfig struct {
	Port        int
	OpenBrowser bool
}

type InfluxDbConfig struct {
	Address  string
	Username string
	Password string
	Database string
}

// Enabled reports whether samples should be written to InfluxDB.
func (c InfluxDbConfig) Enabled() bool {
	return c.Address != "" && c.Database != ""
}

type PushoverConfig struct {
	Token string
	User  string
}

// Enabled reports whether redline alerts should be sent.
func (c PushoverConfig) Enabled() bool {
	return c.Token != "" && c.User != ""
}

// Default returns the configuration used when no file exists.
func Default() Configuration {
	return Configuration{
		Thresholds: formula.DefaultThresholds,
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    filepath.Join(os.Getenv("HOME"), ".rpmsim"),
		},
		Web: WebConfig{
			Port:        8080,
			OpenBrowser: true,
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".rpmsim_conf.json")
}

// Load reads the configuration at path, or DefaultPath when path is empty. A missing
// file yields Default(); fields absent from the file keep their defaults.
func Load(path string) (Configuration, error) {
	if path == "" {
		path = DefaultPath()
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Configuration{}, errors.Wrapf(err, "cannot open config %s", path)
	}
	defer f.Close()

	conf, err := Decode(f)
	return conf, errors.Wrapf(err, "cannot parse config %s", path)
}

// Decode reads a JSON configuration on top of the defaults.
func Decode(r io.Reader) (Configuration, error) {
	conf := Default()
	if err := json.NewDecoder(r).Decode(&conf); err != nil {
		return Configuration{}, err
	}
	if err := conf.Validate(); err != nil {
		return Configuration{}, err
	}
	return conf, nil
}

// Validate checks the values Load cannot fall back from.
func (c Configuration) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return errors.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Thresholds.Yellow <= 0 || c.Thresholds.Red < c.Thresholds.Yellow {
		return errors.Errorf("invalid thresholds: yellow %g, red %g", c.Thresholds.Yellow, c.Thresholds.Red)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Web.Port)
	}
	return nil
}

// Redacted returns a copy with secrets masked, safe to log.
func (c Configuration) Redacted() Configuration {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "<redacted>"
	}
	c.InfluxDb.Password = mask(c.InfluxDb.Password)
	c.Pushover.Token = mask(c.Pushover.Token)
	c.Pushover.User = mask(c.Pushover.User)
	return c
}

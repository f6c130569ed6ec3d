package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/wsgen/internal/branding"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	derivedDir = "derived"
)

// Config keys.
const (
	KeyDirectory   = "generation.directory"
	KeyFormat      = "generation.format"
	KeyDerivedRoot = "generation.derived_root"
	KeyVerbosity   = "log.verbosity"
	KeyLogJSON     = "log.json"
)

// Dir returns the path to the config directory (~/.wsgen/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.wsgen/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating config directory %s", dir)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// Environment variables use the branding prefix with dots mapped to
// underscores, e.g. WSGEN_GENERATION_DIRECTORY.
func Load() {
	configure(viper.GetViper())
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func configure(v *viper.Viper) {
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDirectory, string(DirectoryManifest))
	v.SetDefault(KeyFormat, string(FormatYAML))
	v.SetDefault(KeyDerivedRoot, filepath.Join(Dir(), derivedDir))
	v.SetDefault(KeyVerbosity, 0)
	v.SetDefault(KeyLogJSON, false)
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return errors.Wrapf(err, "creating config file %s", configFile)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	return nil
}

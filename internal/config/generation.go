package config

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Directory selects where generated artifacts are written.
type Directory string

const (
	// DirectoryManifest generates artifacts alongside the source manifests.
	DirectoryManifest Directory = "manifest"
	// DirectoryDerived generates artifacts under the managed derived root.
	DirectoryDerived Directory = "derived"
)

// Format selects the encoding of generated descriptors.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Options are generation flags consumed by the emitter. The orchestrator
// passes them through without interpreting them.
type Options struct {
	Format  Format
	Verbose bool
}

// Generation is the configuration of a single generate invocation.
// It is a plain value; copies never share state.
type Generation struct {
	Options     Options
	Directory   Directory
	DerivedRoot string
}

// DefaultGeneration returns the default configuration: default options and
// artifacts generated next to the manifests.
func DefaultGeneration() Generation {
	return Generation{
		Options:     Options{Format: FormatYAML},
		Directory:   DirectoryManifest,
		DerivedRoot: filepath.Join(Dir(), derivedDir),
	}
}

// ParseDirectory parses a directory policy name.
func ParseDirectory(s string) (Directory, error) {
	switch d := Directory(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectoryManifest, DirectoryDerived:
		return d, nil
	case "":
		return DirectoryManifest, nil
	default:
		return "", errors.WithHint(
			errors.Newf("unknown generation directory %q", s),
			"valid values are: manifest, derived")
	}
}

// ParseFormat parses a descriptor format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON:
		return f, nil
	case "", "yml":
		return FormatYAML, nil
	default:
		return "", errors.WithHint(
			errors.Newf("unknown descriptor format %q", s),
			"valid values are: yaml, json")
	}
}

// FromViper builds a Generation from the given viper instance, applying
// defaults for unset keys. A nil instance uses the global one.
func FromViper(v *viper.Viper) (Generation, error) {
	if v == nil {
		v = viper.GetViper()
	}
	configure(v)

	gen := DefaultGeneration()

	dir, err := ParseDirectory(v.GetString(KeyDirectory))
	if err != nil {
		return Generation{}, errors.Wrapf(err, "reading %s", KeyDirectory)
	}
	gen.Directory = dir

	format, err := ParseFormat(v.GetString(KeyFormat))
	if err != nil {
		return Generation{}, errors.Wrapf(err, "reading %s", KeyFormat)
	}
	gen.Options.Format = format

	if root := v.GetString(KeyDerivedRoot); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return Generation{}, errors.Wrapf(err, "resolving %s", KeyDerivedRoot)
		}
		gen.DerivedRoot = abs
	}

	gen.Options.Verbose = v.GetInt(KeyVerbosity) > 0
	return gen, nil
}

package manifest

import (
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/wsgen/internal/branding"
	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Encoding is a manifest file encoding.
type Encoding string

const (
	EncodingYAML Encoding = "yaml"
	EncodingTOML Encoding = "toml"
)

// SupportedFormat is the semver constraint a manifest format_version must meet.
const SupportedFormat = "^1.0.0"

var supportedFormat = semver.MustParse("1.0.0")

// fileNames is the lookup order for manifest files of each kind.
var fileNames = map[Kind][]string{
	KindProject:   {"project.yaml", "project.yml", "project.toml"},
	KindWorkspace: {"workspace.yaml", "workspace.yml", "workspace.toml"},
}

// FileNames returns the candidate manifest file names for kind, in lookup order.
func FileNames(kind Kind) []string {
	return append([]string(nil), fileNames[kind]...)
}

// KindForFile reports the manifest kind a file name belongs to.
func KindForFile(path string) (Kind, bool) {
	base := filepath.Base(path)
	for _, kind := range AllKinds {
		for _, name := range fileNames[kind] {
			if base == name {
				return kind, true
			}
		}
	}
	return 0, false
}

// EncodingForFile derives the encoding from the file extension.
func EncodingForFile(path string) Encoding {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return EncodingTOML
	}
	return EncodingYAML
}

// ParseProject decodes, validates and version-checks a project manifest.
// path is used for error reporting only.
func ParseProject(path string, data []byte, enc Encoding) (*Project, error) {
	var p Project
	if err := parse(path, KindProject, data, enc, &p); err != nil {
		return nil, err
	}
	if err := checkFormatVersion(p.FormatVersion); err != nil {
		return nil, malformed(path, err)
	}
	if err := checkTargets(&p); err != nil {
		return nil, malformed(path, err)
	}
	return &p, nil
}

// ParseWorkspace decodes, validates and version-checks a workspace manifest.
func ParseWorkspace(path string, data []byte, enc Encoding) (*Workspace, error) {
	var w Workspace
	if err := parse(path, KindWorkspace, data, enc, &w); err != nil {
		return nil, err
	}
	if err := checkFormatVersion(w.FormatVersion); err != nil {
		return nil, malformed(path, err)
	}
	return &w, nil
}

// parse validates the generic document against the schema for kind, then
// decodes into out with the library matching enc.
func parse(path string, kind Kind, data []byte, enc Encoding, out interface{}) error {
	doc, err := decodeDocument(data, enc)
	if err != nil {
		return malformed(path, err)
	}

	result, err := validateDocument(kind, doc)
	if err != nil {
		return malformed(path, err)
	}
	if !result.Valid {
		return malformed(path, &SchemaError{Issues: result.Issues})
	}

	if err := unmarshal(data, enc, out); err != nil {
		return malformed(path, err)
	}
	return nil
}

// decodeDocument unmarshals data into a generic structure for validation.
func decodeDocument(data []byte, enc Encoding) (interface{}, error) {
	var doc interface{}
	switch enc {
	case EncodingTOML:
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "parsing TOML")
		}
		doc = m
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "parsing YAML")
		}
	}
	if doc == nil {
		// An empty document still has to satisfy the schema.
		doc = map[string]interface{}{}
	}
	return doc, nil
}

func unmarshal(data []byte, enc Encoding, out interface{}) error {
	switch enc {
	case EncodingTOML:
		if err := toml.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "decoding TOML manifest")
		}
	default:
		if err := yaml.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "decoding YAML manifest")
		}
	}
	return nil
}

// checkFormatVersion accepts an empty version (current format) or any
// version matching SupportedFormat.
func checkFormatVersion(v string) error {
	if v == "" {
		return nil
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return errors.Wrapf(err, "invalid format_version %q", v)
	}
	constraint, err := semver.NewConstraint(SupportedFormat)
	if err != nil {
		return errors.Wrap(err, "parsing supported format constraint")
	}
	if !constraint.Check(version) {
		return errors.WithHintf(
			errors.Newf("format_version %s is not supported", version),
			"this %s reads manifests with format %s (current %s)",
			branding.CLIName(), SupportedFormat, supportedFormat)
	}
	return nil
}

// checkTargets rejects duplicate target names, which would make target
// references ambiguous.
func checkTargets(p *Project) error {
	seen := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if seen[t.Name] {
			return errors.Newf("duplicate target name %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

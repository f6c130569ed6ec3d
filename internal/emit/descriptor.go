package emit

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v3"
)

type projectDescriptor struct {
	Name           string             `yaml:"name" json:"name"`
	Source         string             `yaml:"source" json:"source"`
	Configurations []string           `yaml:"configurations" json:"configurations"`
	Projects       []string           `yaml:"projects,omitempty" json:"projects,omitempty"`
	Targets        []targetDescriptor `yaml:"targets" json:"targets"`
}

type targetDescriptor struct {
	Name         string                       `yaml:"name" json:"name"`
	Product      string                       `yaml:"product" json:"product"`
	Sources      []string                     `yaml:"sources,omitempty" json:"sources,omitempty"`
	Settings     map[string]map[string]string `yaml:"settings" json:"settings"`
	Dependencies []dependencyDescriptor       `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

type dependencyDescriptor struct {
	Target  string `yaml:"target" json:"target"`
	Project string `yaml:"project,omitempty" json:"project,omitempty"`
}

type buildOrderDescriptor struct {
	Workspace string   `yaml:"workspace" json:"workspace"`
	Targets   []string `yaml:"targets" json:"targets"`
}

// describeProject builds the descriptor written to the artifact of p.
// Paths are relative to the artifact directory.
func describeProject(l layout, g *graph.Graph, p *graph.Project) (*projectDescriptor, error) {
	artifact := l.project(p)
	source, err := relative(artifact, p.Path)
	if err != nil {
		return nil, err
	}
	m := p.Manifest
	d := &projectDescriptor{
		Name:           m.Name,
		Source:         source,
		Configurations: m.ConfigurationNames(),
	}
	for _, dep := range g.Dependencies(p) {
		ref, err := relative(artifact, l.project(dep))
		if err != nil {
			return nil, err
		}
		d.Projects = append(d.Projects, ref)
	}

	for _, t := range m.Targets {
		td := targetDescriptor{
			Name:     t.Name,
			Product:  t.Product,
			Settings: make(map[string]map[string]string, len(d.Configurations)),
		}
		for _, src := range t.Sources {
			rel, err := relative(artifact, filepath.Join(p.Path, filepath.FromSlash(src)))
			if err != nil {
				return nil, err
			}
			td.Sources = append(td.Sources, rel)
		}
		for _, cfg := range d.Configurations {
			td.Settings[cfg] = manifest.Merge(m.Settings.Resolve(cfg), t.Settings.Resolve(cfg))
		}
		for _, dep := range t.Dependencies {
			dd := dependencyDescriptor{Target: dep.Target}
			if !dep.IsLocal() {
				other, ok := g.ProjectAt(graph.ResolveLocation(p.Path, dep.Project))
				if !ok {
					return nil, &graph.DanglingReferenceError{Name: dep.Project, From: m.Name + "/" + t.Name}
				}
				if dd.Project, err = relative(artifact, l.project(other)); err != nil {
					return nil, err
				}
			}
			td.Dependencies = append(td.Dependencies, dd)
		}
		d.Targets = append(d.Targets, td)
	}
	return d, nil
}

// encoder serializes descriptors in the configured format.
type encoder struct {
	ext     string
	marshal func(interface{}) ([]byte, error)
}

func encoderFor(f config.Format) (encoder, error) {
	switch f {
	case config.FormatYAML, "":
		return encoder{ext: "yaml", marshal: marshalYAML}, nil
	case config.FormatJSON:
		return encoder{ext: "json", marshal: marshalJSON}, nil
	default:
		return encoder{}, errors.Newf("unknown descriptor format %q", f)
	}
}

func marshalYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encoding YAML descriptor")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding YAML descriptor")
	}
	return buf.Bytes(), nil
}

func marshalJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding JSON descriptor")
	}
	return append(data, '\n'), nil
}

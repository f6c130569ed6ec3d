package manifest

import (
	"sort"
	"strings"
)

// Kind identifies a manifest kind.
type Kind uint8

const (
	KindProject Kind = 1 << iota
	KindWorkspace
)

// AllKinds lists every manifest kind in detection order.
var AllKinds = []Kind{KindProject, KindWorkspace}

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// Kinds is the set of manifest kinds present at a location.
type Kinds uint8

// Has reports whether k is in the set.
func (s Kinds) Has(k Kind) bool { return s&Kinds(k) != 0 }

// With returns the set with k added.
func (s Kinds) With(k Kind) Kinds { return s | Kinds(k) }

// Empty reports whether no kind is present.
func (s Kinds) Empty() bool { return s == 0 }

func (s Kinds) String() string {
	var names []string
	for _, k := range AllKinds {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Product values accepted for targets.
const (
	ProductApp       = "app"
	ProductFramework = "framework"
	ProductLibrary   = "library"
	ProductTool      = "tool"
	ProductTests     = "tests"
)

// DefaultConfigurations are used when a project declares none.
var DefaultConfigurations = []string{"Debug", "Release"}

// Project is a decoded project manifest.
type Project struct {
	FormatVersion string    `yaml:"format_version,omitempty" toml:"format_version,omitempty"`
	Name          string    `yaml:"name" toml:"name"`
	Settings      *Settings `yaml:"settings,omitempty" toml:"settings,omitempty"`
	Targets       []Target  `yaml:"targets,omitempty" toml:"targets,omitempty"`
}

// Target is a buildable unit inside a project.
type Target struct {
	Name         string             `yaml:"name" toml:"name"`
	Product      string             `yaml:"product" toml:"product"`
	Sources      []string           `yaml:"sources,omitempty" toml:"sources,omitempty"`
	Settings     *Settings          `yaml:"settings,omitempty" toml:"settings,omitempty"`
	Dependencies []TargetDependency `yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
}

// TargetDependency references a target in the same project, or a target in
// another project when Project is set. Project is a path relative to the
// manifest directory of the declaring project.
type TargetDependency struct {
	Target  string `yaml:"target" toml:"target"`
	Project string `yaml:"project,omitempty" toml:"project,omitempty"`
}

// IsLocal reports whether the dependency stays inside the declaring project.
func (d TargetDependency) IsLocal() bool { return d.Project == "" }

// Settings holds build settings: a base layer plus per-configuration layers.
type Settings struct {
	Base           map[string]string            `yaml:"base,omitempty" toml:"base,omitempty"`
	Configurations map[string]map[string]string `yaml:"configurations,omitempty" toml:"configurations,omitempty"`
}

// Resolve returns the base settings overlaid with the named configuration.
// A nil receiver resolves to an empty map.
func (s *Settings) Resolve(configuration string) map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return Merge(s.Base, s.Configurations[configuration])
}

// Merge overlays layers left to right into a new map.
func Merge(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// Target returns the target with the given name.
func (p *Project) Target(name string) (*Target, bool) {
	for i := range p.Targets {
		if p.Targets[i].Name == name {
			return &p.Targets[i], true
		}
	}
	return nil, false
}

// ProjectDependencies returns the distinct project paths referenced by any
// target, in declaration order.
func (p *Project) ProjectDependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	for _, t := range p.Targets {
		for _, d := range t.Dependencies {
			if d.IsLocal() || seen[d.Project] {
				continue
			}
			seen[d.Project] = true
			deps = append(deps, d.Project)
		}
	}
	return deps
}

// ConfigurationNames returns the sorted configuration names declared by the
// project settings or any target, or DefaultConfigurations when none are.
func (p *Project) ConfigurationNames() []string {
	set := make(map[string]bool)
	collect := func(s *Settings) {
		if s == nil {
			return
		}
		for name := range s.Configurations {
			set[name] = true
		}
	}
	collect(p.Settings)
	for _, t := range p.Targets {
		collect(t.Settings)
	}
	if len(set) == 0 {
		return append([]string(nil), DefaultConfigurations...)
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Workspace is a decoded workspace manifest.
type Workspace struct {
	FormatVersion string             `yaml:"format_version,omitempty" toml:"format_version,omitempty"`
	Name          string             `yaml:"name" toml:"name"`
	Elements      []WorkspaceElement `yaml:"elements,omitempty" toml:"elements,omitempty"`
}

// WorkspaceElement is one entry of a workspace manifest. Exactly one of
// Project or Workspace is set; both are paths relative to the manifest
// directory.
type WorkspaceElement struct {
	Project   string `yaml:"project,omitempty" toml:"project,omitempty"`
	Workspace string `yaml:"workspace,omitempty" toml:"workspace,omitempty"`
}

package graph

import (
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/agentx-labs/wsgen/internal/workspace"
)

// Project is a loaded project manifest at an absolute location.
type Project struct {
	Path     string
	Manifest *manifest.Project

	// Dependencies are the absolute locations of the projects this project
	// references, in declaration order.
	Dependencies []string
}

// Name returns the project name declared by the manifest.
func (p *Project) Name() string {
	return p.Manifest.Name
}

// TargetRef identifies a target within a graph.
type TargetRef struct {
	Project string
	Target  string
}

func (r TargetRef) String() string {
	return r.Project + "/" + r.Target
}

// Graph is a resolved dependency graph keyed by project name.
type Graph struct {
	// Name is the root project name in project mode and the workspace name
	// in workspace mode.
	Name string
	// Entry is the location loading started from.
	Entry string

	projects map[string]*Project
	order    []string
	paths    map[string]string

	workspaces map[string]*workspace.Description
	buildOrder []TargetRef
}

func newGraph(entry string) *Graph {
	return &Graph{
		Entry:      entry,
		projects:   make(map[string]*Project),
		paths:      make(map[string]string),
		workspaces: make(map[string]*workspace.Description),
	}
}

// register adds p under its name. A name already held by another location
// is an ambiguous identity.
func (g *Graph) register(p *Project) error {
	name := p.Name()
	if existing, ok := g.projects[name]; ok {
		return &AmbiguousIdentityError{Name: name, First: existing.Path, Second: p.Path}
	}
	g.projects[name] = p
	g.paths[p.Path] = name
	g.order = append(g.order, name)
	return nil
}

// Projects returns the projects in first-discovery order.
func (g *Graph) Projects() []*Project {
	out := make([]*Project, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.projects[name])
	}
	return out
}

// Project returns the project registered under name.
func (g *Graph) Project(name string) (*Project, bool) {
	p, ok := g.projects[name]
	return p, ok
}

// ProjectAt returns the project loaded from location.
func (g *Graph) ProjectAt(location string) (*Project, bool) {
	name, ok := g.paths[location]
	if !ok {
		return nil, false
	}
	return g.projects[name], true
}

// Names returns the project names in first-discovery order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Len returns the number of projects.
func (g *Graph) Len() int {
	return len(g.order)
}

// Workspace returns the nested workspace description loaded from location.
func (g *Graph) Workspace(location string) (*workspace.Description, bool) {
	d, ok := g.workspaces[location]
	return d, ok
}

// Dependencies returns the direct project dependencies of p.
func (g *Graph) Dependencies(p *Project) []*Project {
	out := make([]*Project, 0, len(p.Dependencies))
	for _, loc := range p.Dependencies {
		if dep, ok := g.ProjectAt(loc); ok {
			out = append(out, dep)
		}
	}
	return out
}

// BuildOrder returns every target of the graph with dependencies first.
func (g *Graph) BuildOrder() []TargetRef {
	return append([]TargetRef(nil), g.buildOrder...)
}

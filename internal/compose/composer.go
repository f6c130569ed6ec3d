// Package compose builds the workspace description handed to the emitter.
// In project mode the description is synthesized from the graph; in
// workspace mode the parsed description is checked against its graph.
package compose

import (
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/workspace"
)

// Project synthesizes a workspace named after g with one project element
// per graph project, in discovery order. Every project of the dependency
// closure becomes a top-level element, not only the requested root, so
// cross-project references resolve in the generated workspace.
func Project(g *graph.Graph) *workspace.Description {
	desc := workspace.New(g.Name)
	for _, p := range g.Projects() {
		desc.Add(workspace.ProjectElement(p.Path))
	}
	return desc
}

// Validate checks that every element of desc is part of g. Project elements
// must be graph projects; workspace elements must be nested workspaces
// recorded on g, and their elements are checked in turn.
func Validate(desc *workspace.Description, g *graph.Graph) error {
	return validate(desc, g, make(map[string]bool))
}

func validate(desc *workspace.Description, g *graph.Graph, seen map[string]bool) error {
	for _, el := range desc.Elements {
		switch el.Kind {
		case workspace.ElementProject:
			if _, ok := g.ProjectAt(el.Path); !ok {
				return &graph.DanglingReferenceError{Name: el.String(), From: desc.Name}
			}
		case workspace.ElementWorkspace:
			nested, ok := g.Workspace(el.Path)
			if !ok {
				return &graph.DanglingReferenceError{Name: el.String(), From: desc.Name}
			}
			if seen[el.Path] {
				continue
			}
			seen[el.Path] = true
			if err := validate(nested, g, seen); err != nil {
				return err
			}
		default:
			return &graph.DanglingReferenceError{Name: el.String(), From: desc.Name}
		}
	}
	return nil
}

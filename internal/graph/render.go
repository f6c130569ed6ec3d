package graph

import (
	"fmt"
	"io"
	"strings"
)

// WriteDOT writes g as a Graphviz digraph of projects and their
// dependency edges.
func WriteDOT(w io.Writer, g *Graph) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", g.Name)
	for _, p := range g.Projects() {
		fmt.Fprintf(&b, "  %q;\n", p.Name())
	}
	for _, p := range g.Projects() {
		for _, dep := range g.Dependencies(p) {
			fmt.Fprintf(&b, "  %q -> %q;\n", p.Name(), dep.Name())
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTree writes an indented listing of projects in discovery order,
// followed by the target build order.
func WriteTree(w io.Writer, g *Graph) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d projects)\n", g.Name, g.Len())
	for _, p := range g.Projects() {
		fmt.Fprintf(&b, "  %s  %s\n", p.Name(), p.Path)
		for _, t := range p.Manifest.Targets {
			fmt.Fprintf(&b, "    %s [%s]\n", t.Name, t.Product)
			for _, d := range t.Dependencies {
				if d.IsLocal() {
					fmt.Fprintf(&b, "      -> %s\n", d.Target)
					continue
				}
				fmt.Fprintf(&b, "      -> %s (%s)\n", d.Target, d.Project)
			}
		}
	}
	if order := g.BuildOrder(); len(order) > 0 {
		b.WriteString("\nbuild order:\n")
		for i, ref := range order {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, ref)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

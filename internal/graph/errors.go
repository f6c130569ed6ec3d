package graph

import (
	"fmt"
	"strings"
)

// AmbiguousIdentityError reports two locations declaring the same project name.
type AmbiguousIdentityError struct {
	Name   string
	First  string
	Second string
}

func (e *AmbiguousIdentityError) Error() string {
	return fmt.Sprintf("project name %q is declared by both %s and %s", e.Name, e.First, e.Second)
}

// CycleError reports a dependency cycle. Path starts and ends with the same
// element. For project cycles Path holds locations and Names the matching
// project names; for target cycles Path holds "Project/Target" references.
type CycleError struct {
	Path  []string
	Names []string
}

func (e *CycleError) Error() string {
	elems := e.Path
	if len(e.Names) == len(e.Path) {
		elems = e.Names
	}
	return "dependency cycle: " + strings.Join(elems, " -> ")
}

// Contains reports whether the cycle passes through s, matching either a
// path element or a name.
func (e *CycleError) Contains(s string) bool {
	for _, p := range e.Path {
		if p == s {
			return true
		}
	}
	for _, n := range e.Names {
		if n == s {
			return true
		}
	}
	return false
}

// DanglingReferenceError reports a reference to something that is not part
// of the graph. Name is the missing project location, target reference or
// workspace element; From names the referrer.
type DanglingReferenceError struct {
	Name string
	From string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s references %s, which is not part of the graph", e.From, e.Name)
}

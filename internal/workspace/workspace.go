// Package workspace defines the workspace description handed to the emitter:
// a name plus an ordered list of elements, each a project or a nested
// workspace location.
package workspace

// ElementKind distinguishes the element variants.
type ElementKind int

const (
	ElementProject ElementKind = iota + 1
	ElementWorkspace
)

func (k ElementKind) String() string {
	switch k {
	case ElementProject:
		return "project"
	case ElementWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// Element is one entry of a workspace. Path is absolute.
type Element struct {
	Kind ElementKind
	Path string
}

// ProjectElement references the project at path.
func ProjectElement(path string) Element {
	return Element{Kind: ElementProject, Path: path}
}

// WorkspaceElement references the nested workspace at path.
func WorkspaceElement(path string) Element {
	return Element{Kind: ElementWorkspace, Path: path}
}

func (e Element) String() string {
	return e.Kind.String() + "(" + e.Path + ")"
}

// Description is a named, ordered collection of elements. Order is the
// insertion order and is carried into the generated output.
type Description struct {
	Name     string
	Elements []Element
}

// New returns an empty description.
func New(name string) *Description {
	return &Description{Name: name}
}

// Add appends an element.
func (d *Description) Add(e Element) {
	d.Elements = append(d.Elements, e)
}

// Projects returns the project element paths in order.
func (d *Description) Projects() []string {
	return d.paths(ElementProject)
}

// Workspaces returns the nested workspace element paths in order.
func (d *Description) Workspaces() []string {
	return d.paths(ElementWorkspace)
}

func (d *Description) paths(kind ElementKind) []string {
	var out []string
	for _, e := range d.Elements {
		if e.Kind == kind {
			out = append(out, e.Path)
		}
	}
	return out
}

// Equal reports whether both descriptions have the same name and elements.
func (d *Description) Equal(other *Description) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Name != other.Name || len(d.Elements) != len(other.Elements) {
		return false
	}
	for i := range d.Elements {
		if d.Elements[i] != other.Elements[i] {
			return false
		}
	}
	return true
}

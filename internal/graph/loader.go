package graph

import (
	"context"
	"path/filepath"

	"github.com/agentx-labs/wsgen/internal/logging"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/agentx-labs/wsgen/internal/workspace"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ModelLoader parses the manifest of one kind at a location. It must report
// a missing manifest as *manifest.NotFoundError and a broken one as
// *manifest.MalformedError.
type ModelLoader interface {
	LoadProject(ctx context.Context, location string) (*manifest.Project, error)
	LoadWorkspace(ctx context.Context, location string) (*manifest.Workspace, error)
}

// Loader builds dependency graphs from manifests.
type Loader struct {
	models ModelLoader
	log    *zap.SugaredLogger
}

// NewLoader returns a Loader parsing manifests through models.
func NewLoader(models ModelLoader, log *zap.SugaredLogger) *Loader {
	return &Loader{models: models, log: logging.OrNop(log)}
}

// LoadProject loads the project at location and everything it depends on.
// The graph is named after the root project.
func (l *Loader) LoadProject(ctx context.Context, location string) (*Graph, error) {
	location, err := manifest.Abs(location)
	if err != nil {
		return nil, err
	}
	r := l.newResolver(ctx, location)
	root, err := r.resolve(location)
	if err != nil {
		return nil, err
	}
	r.g.Name = root.Name()
	if err := r.g.close(); err != nil {
		return nil, err
	}
	l.log.Debugw("loaded project graph",
		logging.FieldProject, r.g.Name, logging.FieldCount, r.g.Len())
	return r.g, nil
}

// LoadWorkspace loads the workspace at location together with the graph of
// every project it references, directly, through nested workspaces, or
// through dependencies.
func (l *Loader) LoadWorkspace(ctx context.Context, location string) (*workspace.Description, *Graph, error) {
	location, err := manifest.Abs(location)
	if err != nil {
		return nil, nil, err
	}
	r := l.newResolver(ctx, location)
	desc, err := r.workspace(location)
	if err != nil {
		return nil, nil, err
	}
	r.g.Name = desc.Name
	if err := r.g.close(); err != nil {
		return nil, nil, err
	}
	l.log.Debugw("loaded workspace graph",
		logging.FieldWorkspace, desc.Name, logging.FieldCount, r.g.Len())
	return desc, r.g, nil
}

func (l *Loader) newResolver(ctx context.Context, entry string) *resolver {
	return &resolver{
		ctx:     ctx,
		models:  l.models,
		log:     l.log,
		g:       newGraph(entry),
		onStack: make(map[string]bool),
	}
}

// frame is a project on the resolution stack with a cursor into its
// dependency list.
type frame struct {
	project *Project
	next    int
}

type resolver struct {
	ctx     context.Context
	models  ModelLoader
	log     *zap.SugaredLogger
	g       *Graph
	onStack map[string]bool
	wsStack []string
}

// resolve loads root and every project reachable from it. Projects are
// registered when first pushed, which fixes first-discovery order.
func (r *resolver) resolve(root string) (*Project, error) {
	if p, ok := r.g.ProjectAt(root); ok {
		return p, nil
	}
	first, err := r.load(root)
	if err != nil {
		return nil, err
	}
	stack := []*frame{{project: first}}
	r.onStack[root] = true

	for len(stack) > 0 {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		if top.next == len(top.project.Dependencies) {
			delete(r.onStack, top.project.Path)
			stack = stack[:len(stack)-1]
			continue
		}
		dep := top.project.Dependencies[top.next]
		top.next++

		if r.onStack[dep] {
			return nil, cycle(stack, dep)
		}
		if _, ok := r.g.ProjectAt(dep); ok {
			continue
		}
		p, err := r.load(dep)
		if err != nil {
			return nil, err
		}
		stack = append(stack, &frame{project: p})
		r.onStack[dep] = true
	}
	return first, nil
}

func (r *resolver) load(location string) (*Project, error) {
	m, err := r.models.LoadProject(r.ctx, location)
	if err != nil {
		return nil, err
	}
	p := &Project{Path: location, Manifest: m}
	for _, rel := range m.ProjectDependencies() {
		p.Dependencies = append(p.Dependencies, ResolveLocation(location, rel))
	}
	if err := r.g.register(p); err != nil {
		return nil, err
	}
	r.log.Debugw("registered project",
		logging.FieldProject, m.Name, logging.FieldPath, location)
	return p, nil
}

// workspace loads the workspace at location, resolving its project elements
// as roots and descending into nested workspaces.
func (r *resolver) workspace(location string) (*workspace.Description, error) {
	for i, active := range r.wsStack {
		if active == location {
			path := append(append([]string(nil), r.wsStack[i:]...), location)
			return nil, &CycleError{Path: path}
		}
	}
	r.wsStack = append(r.wsStack, location)
	defer func() { r.wsStack = r.wsStack[:len(r.wsStack)-1] }()

	m, err := r.models.LoadWorkspace(r.ctx, location)
	if err != nil {
		return nil, err
	}
	desc := workspace.New(m.Name)
	for _, el := range m.Elements {
		switch {
		case el.Project != "":
			loc := ResolveLocation(location, el.Project)
			if _, err := r.resolve(loc); err != nil {
				return nil, err
			}
			desc.Add(workspace.ProjectElement(loc))
		case el.Workspace != "":
			loc := ResolveLocation(location, el.Workspace)
			if _, ok := r.g.workspaces[loc]; !ok {
				nested, err := r.workspace(loc)
				if err != nil {
					return nil, err
				}
				r.g.workspaces[loc] = nested
			}
			desc.Add(workspace.WorkspaceElement(loc))
		default:
			return nil, &manifest.MalformedError{
				Path: location,
				Err:  errors.New("workspace element names neither a project nor a workspace"),
			}
		}
	}
	r.log.Debugw("loaded workspace",
		logging.FieldWorkspace, m.Name, logging.FieldPath, location)
	return desc, nil
}

// cycle builds the error for dep re-entering the active stack.
func cycle(stack []*frame, dep string) *CycleError {
	start := 0
	for i, f := range stack {
		if f.project.Path == dep {
			start = i
			break
		}
	}
	err := &CycleError{}
	for _, f := range stack[start:] {
		err.Path = append(err.Path, f.project.Path)
		err.Names = append(err.Names, f.project.Name())
	}
	err.Path = append(err.Path, dep)
	err.Names = append(err.Names, stack[start].project.Name())
	return err
}

// ResolveLocation resolves a manifest-relative reference against the
// location of the manifest declaring it.
func ResolveLocation(base, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(base, ref)
}

// Package generator is the entry point of generation. It decides between
// workspace and project mode from the manifests present at a location,
// loads the graph, composes the workspace description and hands both to
// the emitter.
package generator

import (
	"context"

	"github.com/agentx-labs/wsgen/internal/compose"
	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/emit"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/logging"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/agentx-labs/wsgen/internal/workspace"
	"go.uber.org/zap"
)

// Generating generates a project or a workspace at a location.
type Generating interface {
	GenerateProject(ctx context.Context, path string, cfg config.Generation) (string, error)
	GenerateWorkspace(ctx context.Context, path string, cfg config.Generation) (string, error)
}

// Detector reports the manifest kinds present at a location.
type Detector interface {
	Manifests(ctx context.Context, path string) manifest.Kinds
}

// Generate dispatches on the manifests at path. A workspace manifest wins
// over a colocated project manifest; with neither present the result is a
// *manifest.NotFoundError carrying path. Errors from g are returned as is.
func Generate(ctx context.Context, g Generating, d Detector, path string, cfg config.Generation) (string, error) {
	kinds := d.Manifests(ctx, path)
	switch {
	case kinds.Has(manifest.KindWorkspace):
		return g.GenerateWorkspace(ctx, path, cfg)
	case kinds.Has(manifest.KindProject):
		return g.GenerateProject(ctx, path, cfg)
	default:
		return "", &manifest.NotFoundError{Path: path}
	}
}

// GraphLoader loads dependency graphs.
type GraphLoader interface {
	LoadProject(ctx context.Context, location string) (*graph.Graph, error)
	LoadWorkspace(ctx context.Context, location string) (*workspace.Description, *graph.Graph, error)
}

// Deps are the collaborators of a Generator.
type Deps struct {
	Detector Detector
	Graphs   GraphLoader
	Emitter  emit.WorkspaceGenerating
	Log      *zap.SugaredLogger
}

// Generator implements Generating on top of the graph loader, the composer
// and an emitter.
type Generator struct {
	detector Detector
	graphs   GraphLoader
	emitter  emit.WorkspaceGenerating
	log      *zap.SugaredLogger
}

var _ Generating = (*Generator)(nil)

// New returns a Generator wired to deps.
func New(deps Deps) *Generator {
	return &Generator{
		detector: deps.Detector,
		graphs:   deps.Graphs,
		emitter:  deps.Emitter,
		log:      logging.OrNop(deps.Log),
	}
}

// Generate generates whatever the manifests at path describe.
func (g *Generator) Generate(ctx context.Context, path string, cfg config.Generation) (string, error) {
	return Generate(ctx, g, g.detector, path, cfg)
}

// GenerateProject generates a workspace holding the project at path and
// every project it depends on.
func (g *Generator) GenerateProject(ctx context.Context, path string, cfg config.Generation) (string, error) {
	g.log.Debugw("generating project", logging.FieldPath, path, logging.FieldMode, "project")

	dg, err := g.graphs.LoadProject(ctx, path)
	if err != nil {
		return "", err
	}
	ws := compose.Project(dg)
	return g.emit(ctx, ws, path, dg, cfg)
}

// GenerateWorkspace generates the workspace manifest at path.
func (g *Generator) GenerateWorkspace(ctx context.Context, path string, cfg config.Generation) (string, error) {
	g.log.Debugw("generating workspace", logging.FieldPath, path, logging.FieldMode, "workspace")

	ws, dg, err := g.graphs.LoadWorkspace(ctx, path)
	if err != nil {
		return "", err
	}
	if err := compose.Validate(ws, dg); err != nil {
		return "", err
	}
	return g.emit(ctx, ws, path, dg, cfg)
}

func (g *Generator) emit(ctx context.Context, ws *workspace.Description, path string, dg *graph.Graph,
	cfg config.Generation) (string, error) {
	out, err := g.emitter.Generate(ctx, ws, dg.Entry, dg, cfg.Options, cfg.Directory)
	if err != nil {
		return "", err
	}
	g.log.Infow("generation finished",
		logging.FieldPath, path,
		logging.FieldWorkspace, ws.Name,
		logging.FieldCount, dg.Len(),
		logging.FieldOutput, out)
	return out, nil
}

// Load resolves the manifests at path without emitting anything, using the
// same dispatch as Generate. In project mode the description is the
// synthesized one.
func (g *Generator) Load(ctx context.Context, path string) (*workspace.Description, *graph.Graph, error) {
	kinds := g.detector.Manifests(ctx, path)
	switch {
	case kinds.Has(manifest.KindWorkspace):
		desc, dg, err := g.graphs.LoadWorkspace(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		if err := compose.Validate(desc, dg); err != nil {
			return nil, nil, err
		}
		return desc, dg, nil
	case kinds.Has(manifest.KindProject):
		dg, err := g.graphs.LoadProject(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return compose.Project(dg), dg, nil
	default:
		return nil, nil, &manifest.NotFoundError{Path: path}
	}
}

// Inputs returns the manifest directories that generation at path reads:
// the entry location, nested workspace locations and every project
// location of the graph. Watch mode observes them.
func (g *Generator) Inputs(ctx context.Context, path string) ([]string, error) {
	desc, dg, err := g.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	add(dg.Entry)
	addWorkspaces(dg, desc, add)
	for _, p := range dg.Projects() {
		add(p.Path)
	}
	return dirs, nil
}

func addWorkspaces(dg *graph.Graph, desc *workspace.Description, add func(string)) {
	for _, loc := range desc.Workspaces() {
		add(loc)
		if nested, ok := dg.Workspace(loc); ok {
			addWorkspaces(dg, nested, add)
		}
	}
}

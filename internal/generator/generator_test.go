package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/emit"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/agentx-labs/wsgen/internal/workspace"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeDetector manifest.Kinds

func (f fakeDetector) Manifests(context.Context, string) manifest.Kinds {
	return manifest.Kinds(f)
}

type fakeGenerating struct {
	calls []string
	err   error
}

func (f *fakeGenerating) GenerateProject(_ context.Context, path string, _ config.Generation) (string, error) {
	f.calls = append(f.calls, "project")
	return path + "/project-out", f.err
}

func (f *fakeGenerating) GenerateWorkspace(_ context.Context, path string, _ config.Generation) (string, error) {
	f.calls = append(f.calls, "workspace")
	return path + "/workspace-out", f.err
}

func TestGenerate_Dispatch(t *testing.T) {
	var none manifest.Kinds
	tests := []struct {
		name  string
		kinds manifest.Kinds
		want  string
	}{
		{"workspace only", none.With(manifest.KindWorkspace), "workspace"},
		{"project only", none.With(manifest.KindProject), "project"},
		{"workspace beats project", none.With(manifest.KindProject).With(manifest.KindWorkspace), "workspace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGenerating{}
			out, err := Generate(context.Background(), g, fakeDetector(tt.kinds), "/r", config.DefaultGeneration())
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, g.calls)
			assert.Equal(t, "/r/"+tt.want+"-out", out)
		})
	}
}

func TestGenerate_NotFoundCarriesPath(t *testing.T) {
	g := &fakeGenerating{}
	_, err := Generate(context.Background(), g, fakeDetector(0), "/r/empty", config.DefaultGeneration())

	var nf *manifest.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "/r/empty", nf.Path)
	assert.True(t, errors.Is(err, manifest.ErrNotFound))
	assert.Empty(t, g.calls)
}

func TestGenerate_ErrorsUnchanged(t *testing.T) {
	cause := &graph.CycleError{Path: []string{"/r/A", "/r/B", "/r/A"}}
	g := &fakeGenerating{err: cause}
	_, err := Generate(context.Background(), g, fakeDetector(manifest.Kinds(0).With(manifest.KindProject)), "/r/A", config.DefaultGeneration())
	assert.Same(t, cause, err)
}

// recordingEmitter captures what the generator hands to the emitter.
type recordingEmitter struct {
	ws   *workspace.Description
	path string
	g    *graph.Graph
	err  error
}

func (r *recordingEmitter) Generate(_ context.Context, ws *workspace.Description, path string, g *graph.Graph,
	_ config.Options, _ config.Directory) (string, error) {
	r.ws, r.path, r.g = ws, path, g
	if r.err != nil {
		return "", r.err
	}
	return filepath.Join(path, ws.Name+".wsgen"), nil
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newGenerator(e emit.WorkspaceGenerating, log *zap.SugaredLogger) *Generator {
	models := manifest.NewFileLoader(nil, nil)
	return New(Deps{
		Detector: models,
		Graphs:   graph.NewLoader(models, nil),
		Emitter:  e,
		Log:      log,
	})
}

func TestGenerator_SingleProject(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "P")
	writeFile(t, root, "P/project.yaml", "name: P\n")

	rec := &recordingEmitter{}
	out, err := newGenerator(rec, nil).Generate(context.Background(), p, config.DefaultGeneration())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(p, "P.wsgen"), out)
	assert.Equal(t, p, rec.path)
	assert.Equal(t, []string{"P"}, rec.g.Names())
	assert.True(t, rec.ws.Equal(&workspace.Description{
		Name:     "P",
		Elements: []workspace.Element{workspace.ProjectElement(p)},
	}))
}

func TestGenerator_ProjectModeElementsEqualGraph(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "P/project.yaml", `
name: P
targets:
  - name: P
    product: app
    dependencies:
      - {project: ../Q, target: Q}
`)
	writeFile(t, root, "Q/project.yaml", "name: Q\ntargets:\n  - {name: Q, product: library}\n")

	rec := &recordingEmitter{}
	_, err := newGenerator(rec, nil).Generate(context.Background(), filepath.Join(root, "P"), config.DefaultGeneration())
	require.NoError(t, err)

	assert.Equal(t, []workspace.Element{
		workspace.ProjectElement(filepath.Join(root, "P")),
		workspace.ProjectElement(filepath.Join(root, "Q")),
	}, rec.ws.Elements)
	require.Len(t, rec.ws.Elements, rec.g.Len())
	for _, el := range rec.ws.Elements {
		_, ok := rec.g.ProjectAt(el.Path)
		assert.True(t, ok, "%s not in graph", el)
	}
}

func TestGenerator_WorkspaceWinsOverProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "project.yaml", "name: Root\n")
	writeFile(t, root, "workspace.yaml", "name: Suite\nelements:\n  - project: .\n  - project: Lib\n")
	writeFile(t, root, "Lib/project.yaml", "name: Lib\n")

	rec := &recordingEmitter{}
	_, err := newGenerator(rec, nil).Generate(context.Background(), root, config.DefaultGeneration())
	require.NoError(t, err)

	assert.Equal(t, "Suite", rec.ws.Name)
	assert.Equal(t, []string{root, filepath.Join(root, "Lib")}, rec.ws.Projects())
	assert.Equal(t, []string{"Root", "Lib"}, rec.g.Names())
}

func TestGenerator_MissingNestedWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "workspace.yaml", "name: Suite\nelements:\n  - project: A\n  - workspace: sub\n")
	writeFile(t, root, "A/project.yaml", "name: A\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))

	rec := &recordingEmitter{}
	_, err := newGenerator(rec, nil).Generate(context.Background(), root, config.DefaultGeneration())

	var nf *manifest.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, filepath.Join(root, "sub"), nf.Path)
	assert.Nil(t, rec.ws, "emitter must not run")
}

func TestGenerator_NotFound(t *testing.T) {
	root := t.TempDir()
	_, err := newGenerator(&recordingEmitter{}, nil).Generate(context.Background(), root, config.DefaultGeneration())

	var nf *manifest.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, root, nf.Path)
}

func TestGenerator_EmitterErrorUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "project.yaml", "name: P\n")

	cause := &emit.EmissionError{Err: errors.New("disk full")}
	_, err := newGenerator(&recordingEmitter{err: cause}, nil).Generate(context.Background(), root, config.DefaultGeneration())
	assert.Same(t, cause, err)
}

func TestGenerator_EndToEndIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "App/project.yaml", `
name: App
targets:
  - name: App
    product: app
    dependencies:
      - {project: ../Core, target: Core}
`)
	writeFile(t, root, "Core/project.toml", "name = \"Core\"\n\n[[targets]]\nname = \"Core\"\nproduct = \"framework\"\n")

	core, logs := observer.New(zapcore.InfoLevel)
	gen := newGenerator(emit.New(nil, "", nil), zap.New(core).Sugar())
	app := filepath.Join(root, "App")

	first, err := gen.Generate(context.Background(), app, config.DefaultGeneration())
	require.NoError(t, err)
	contents, err := os.ReadFile(filepath.Join(first, "contents.xml"))
	require.NoError(t, err)

	second, err := gen.Generate(context.Background(), app, config.DefaultGeneration())
	require.NoError(t, err)
	again, err := os.ReadFile(filepath.Join(second, "contents.xml"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, string(contents), string(again))
	assert.Equal(t, 2, logs.FilterMessage("generation finished").Len())
}

func TestGenerator_Inputs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "workspace.yaml", "name: Suite\nelements:\n  - project: App\n  - workspace: tools\n")
	writeFile(t, root, "App/project.yaml", "name: App\n")
	writeFile(t, root, "tools/workspace.yaml", "name: Tools\nelements:\n  - project: Lint\n")
	writeFile(t, root, "tools/Lint/project.yaml", "name: Lint\n")

	inputs, err := newGenerator(&recordingEmitter{}, nil).Inputs(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "tools"),
		filepath.Join(root, "App"),
		filepath.Join(root, "tools", "Lint"),
	}, inputs)
}

func TestGenerator_LoadProjectMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "project.yaml", "name: P\n")

	desc, dg, err := newGenerator(&recordingEmitter{}, nil).Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "P", desc.Name)
	assert.Equal(t, []string{root}, desc.Projects())
	assert.Equal(t, 1, dg.Len())
}

//go:build integration

package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/agentx-labs/wsgen/internal/scaffold"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

func loadConfig(t *testing.T) config.Generation {
	t.Helper()
	cfg, err := config.FromViper(viper.New())
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	return cfg
}

// TestFullFlowWorkspace generates the root workspace and verifies every
// artifact of the nested tree.
func TestFullFlowWorkspace(t *testing.T) {
	env := setupTestEnv(t)
	setupSources(t, env.SourceDir)
	cfg := loadConfig(t)

	out, err := newGenerator(cfg).Generate(context.Background(), env.SourceDir, cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if want := filepath.Join(env.SourceDir, "Suite.wsgen"); out != want {
		t.Fatalf("output = %s, want %s", out, want)
	}

	contents := filepath.Join(out, "contents.xml")
	assertFileContains(t, contents, `location="group:App/App.genproj"`)
	assertFileContains(t, contents, `location="group:tools/Tools.wsgen"`)
	assertFileContains(t, filepath.Join(env.SourceDir, "tools", "Tools.wsgen", "contents.xml"),
		`location="group:Lint/Lint.genproj"`)

	for _, p := range []string{"App/App.genproj", "Feature/Feature.genproj", "Core/Core.genproj", "tools/Lint/Lint.genproj"} {
		assertFileExists(t, filepath.Join(env.SourceDir, p, "project.yaml"))
	}
	assertFileContains(t, filepath.Join(env.SourceDir, "App", "App.genproj", "project.yaml"),
		"project: ../../Feature/Feature.genproj")

	data, err := os.ReadFile(filepath.Join(out, "build-order.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	order := string(data)
	core := strings.Index(order, "Core/Core")
	feature := strings.Index(order, "Feature/Feature")
	app := strings.Index(order, "App/App\n")
	if core < 0 || feature < core || app < feature {
		t.Errorf("build order not dependencies first:\n%s", order)
	}
}

// TestFullFlowProjectMode generates a single project and checks that its
// whole dependency closure becomes part of the workspace.
func TestFullFlowProjectMode(t *testing.T) {
	env := setupTestEnv(t)
	setupSources(t, env.SourceDir)
	cfg := loadConfig(t)
	app := filepath.Join(env.SourceDir, "App")

	out, err := newGenerator(cfg).Generate(context.Background(), app, cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	contents := filepath.Join(out, "contents.xml")
	assertFileContains(t, contents, `group:App.genproj`)
	assertFileContains(t, contents, `group:../Feature/Feature.genproj`)
	assertFileContains(t, contents, `group:../Core/Core.genproj`)
	assertFileNotExists(t, filepath.Join(env.SourceDir, "tools", "Lint", "Lint.genproj"))
}

// TestFullFlowIdempotent runs generation twice and compares the trees.
func TestFullFlowIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	setupSources(t, env.SourceDir)
	cfg := loadConfig(t)
	gen := newGenerator(cfg)

	if _, err := gen.Generate(context.Background(), env.SourceDir, cfg); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	before := readTree(t, env.SourceDir)

	if _, err := gen.Generate(context.Background(), env.SourceDir, cfg); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	after := readTree(t, env.SourceDir)

	if len(before) != len(after) {
		t.Fatalf("file count changed: %d -> %d", len(before), len(after))
	}
	for path, content := range before {
		if after[path] != content {
			t.Errorf("%s changed between runs", path)
		}
	}
}

// TestFullFlowDerived writes everything below the derived root.
func TestFullFlowDerived(t *testing.T) {
	env := setupTestEnv(t)
	setupSources(t, env.SourceDir)
	cfg := loadConfig(t)
	cfg.Directory = config.DirectoryDerived
	cfg.Options.Format = config.FormatJSON

	manifests := readTree(t, env.SourceDir)
	out, err := newGenerator(cfg).Generate(context.Background(), env.SourceDir, cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(out, env.DerivedDir) {
		t.Fatalf("output %s is not below %s", out, env.DerivedDir)
	}

	base := filepath.Dir(out)
	assertDirExists(t, filepath.Join(base, "workspaces", "Tools.wsgen"))
	assertFileExists(t, filepath.Join(base, "projects", "Core.genproj", "project.json"))
	assertFileExists(t, filepath.Join(out, "build-order.json"))

	if got := readTree(t, env.SourceDir); len(got) != len(manifests) {
		t.Errorf("source tree changed: %d files, want %d", len(got), len(manifests))
	}
}

// TestFullFlowRegenerateAfterChange picks up an edited manifest.
func TestFullFlowRegenerateAfterChange(t *testing.T) {
	env := setupTestEnv(t)
	setupSources(t, env.SourceDir)
	cfg := loadConfig(t)
	gen := newGenerator(cfg)

	if _, err := gen.Generate(context.Background(), env.SourceDir, cfg); err != nil {
		t.Fatalf("first Generate: %v", err)
	}

	writeManifest(t, env.SourceDir, "Core", "project.yml", `name: Core
targets:
  - name: Core
    product: framework
  - name: CoreTesting
    product: library
    dependencies:
      - target: Core
`)
	if _, err := gen.Generate(context.Background(), env.SourceDir, cfg); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	assertFileContains(t, filepath.Join(env.SourceDir, "Core", "Core.genproj", "project.yaml"), "name: CoreTesting")
}

// TestFullFlowCycleAbortsWithoutOutput checks that a cycle fails before
// anything is written.
func TestFullFlowCycleAbortsWithoutOutput(t *testing.T) {
	env := setupTestEnv(t)
	setupSources(t, env.SourceDir)
	writeManifest(t, env.SourceDir, "Core", "project.yml", `name: Core
targets:
  - name: Core
    product: framework
    dependencies:
      - {project: ../App, target: App}
`)
	cfg := loadConfig(t)

	_, err := newGenerator(cfg).Generate(context.Background(), env.SourceDir, cfg)
	var cycle *graph.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want *graph.CycleError", err)
	}
	if !cycle.Contains("App") || !cycle.Contains("Core") {
		t.Errorf("cycle %v does not name App and Core", cycle.Names)
	}
	assertFileNotExists(t, filepath.Join(env.SourceDir, "Suite.wsgen"))
}

// TestFullFlowInitThenGenerate scaffolds projects and a workspace, then
// generates from them.
func TestFullFlowInitThenGenerate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Api", "Model"} {
		dir := filepath.Join(env.SourceDir, name)
		if _, err := scaffold.Generate(ctx, manifest.KindProject, scaffold.NewData(name, dir), dir); err != nil {
			t.Fatalf("scaffolding %s: %v", name, err)
		}
	}
	projects, err := scaffold.DiscoverProjects(ctx, env.SourceDir)
	if err != nil {
		t.Fatal(err)
	}
	data := scaffold.NewData("Services", env.SourceDir)
	data.Projects = projects
	if _, err := scaffold.Generate(ctx, manifest.KindWorkspace, data, env.SourceDir); err != nil {
		t.Fatalf("scaffolding workspace: %v", err)
	}

	cfg := loadConfig(t)
	out, err := newGenerator(cfg).Generate(ctx, env.SourceDir, cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	assertFileContains(t, filepath.Join(out, "contents.xml"), "group:Api/Api.genproj")
	assertFileContains(t, filepath.Join(out, "contents.xml"), "group:Model/Model.genproj")
}

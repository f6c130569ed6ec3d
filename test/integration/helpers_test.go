//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/emit"
	"github.com/agentx-labs/wsgen/internal/generator"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/viant/afs"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // HOME, contains .wsgen/config.yaml
	DerivedDir string // WSGEN_GENERATION_DERIVED_ROOT
	SourceDir  string // root of the manifest tree
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so all wsgen operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		DerivedDir: t.TempDir(),
		SourceDir:  t.TempDir(),
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("WSGEN_GENERATION_DERIVED_ROOT", env.DerivedDir)
	return env
}

// setupSources writes a tree with an App depending on Feature and Core,
// Feature depending on Core, a Tools workspace nested in the root workspace,
// and a Lint tool depending on Core.
func setupSources(t *testing.T, root string) {
	t.Helper()

	writeManifest(t, root, "App", "project.yaml", `format_version: 1.0.0
name: App
settings:
  base:
    PRODUCT_BUNDLE_IDENTIFIER: io.example.app
  configurations:
    Debug: {OPTIMIZE: none}
    Release: {OPTIMIZE: speed}
targets:
  - name: App
    product: app
    sources: [Sources/**]
    dependencies:
      - {project: ../Feature, target: Feature}
      - {project: ../Core, target: Core}
  - name: AppTests
    product: tests
    sources: [Tests/**]
    dependencies:
      - target: App
`)
	writeManifest(t, root, "Feature", "project.toml", `name = "Feature"

[[targets]]
name = "Feature"
product = "framework"
sources = ["Sources/**"]

  [[targets.dependencies]]
  project = "../Core"
  target = "Core"
`)
	writeManifest(t, root, "Core", "project.yml", `name: Core
targets:
  - name: Core
    product: framework
    sources: [Sources/**]
`)
	writeManifest(t, root, "tools/Lint", "project.yaml", `name: Lint
targets:
  - name: lint
    product: tool
    dependencies:
      - {project: ../../Core, target: Core}
`)
	writeManifest(t, root, "tools", "workspace.yaml", `name: Tools
elements:
  - project: Lint
`)
	writeManifest(t, root, "", "workspace.yaml", `name: Suite
elements:
  - project: App
  - workspace: tools
`)
}

// newGenerator wires a generator to the local filesystem the way the CLI does.
func newGenerator(cfg config.Generation) *generator.Generator {
	fs := afs.New()
	models := manifest.NewFileLoader(fs, nil)
	return generator.New(generator.Deps{
		Detector: models,
		Graphs:   graph.NewLoader(models, nil),
		Emitter:  emit.New(fs, cfg.DerivedRoot, nil),
	})
}

// writeManifest creates <root>/<dir>/<name> with content.
func writeManifest(t *testing.T, root, dir, name, content string) {
	t.Helper()
	writeFile(t, filepath.Join(root, dir, name), content)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}

// readTree returns the content of every file below root keyed by its
// slash-separated relative path.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}
	return files
}

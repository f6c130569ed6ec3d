package scaffold

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/cockroachdb/errors"
	"github.com/viant/afs"
)

//go:embed scaffolds
var scaffoldFS embed.FS

// formatVersion is written into every scaffolded manifest.
const formatVersion = "1.0.0"

// Data holds all template variables available to scaffold templates.
type Data struct {
	Name          string
	Product       string
	Tests         bool
	FormatVersion string
	// Projects lists workspace elements relative to the workspace directory.
	Projects []string
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData returns template data for name with defaults filled in. An empty
// name falls back to the base name of outputDir.
func NewData(name, outputDir string) *Data {
	if name == "" {
		name = filepath.Base(outputDir)
	}
	return &Data{
		Name:          name,
		Product:       manifest.ProductApp,
		Tests:         true,
		FormatVersion: formatVersion,
	}
}

// templateSetName returns the embedded directory name for kind.
func templateSetName(kind manifest.Kind) string {
	return kind.String()
}

// DiscoverProjects returns the directories below root that hold a project
// manifest, relative to root and slash separated. Generated artifact
// directories and hidden directories are skipped.
func DiscoverProjects(ctx context.Context, root string) ([]string, error) {
	fsvc := afs.New()
	var found []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != root && (strings.HasPrefix(name, ".") ||
			strings.HasSuffix(name, ".wsgen") || strings.HasSuffix(name, ".genproj")) {
			return filepath.SkipDir
		}
		if p == root {
			return nil
		}
		if manifest.Detect(ctx, fsvc, p).Has(manifest.KindProject) {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s for projects", root)
	}
	sort.Strings(found)
	return found, nil
}

// Generate writes the starter manifest of kind into outputDir and validates
// it against the manifest schema. An existing manifest of that kind is never
// overwritten.
func Generate(ctx context.Context, kind manifest.Kind, data *Data, outputDir string) (*Result, error) {
	setName := templateSetName(kind)
	templatesDir := path.Join("scaffolds", setName)

	entries, err := fs.ReadDir(scaffoldFS, templatesDir)
	if err != nil {
		return nil, errors.Wrapf(err, "template set %q not found", setName)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}

	if kinds := manifest.Detect(ctx, afs.New(), outputDir); kinds.Has(kind) {
		return nil, errors.WithHint(
			errors.Newf("%s already contains a %s manifest", outputDir, kind),
			"edit the existing manifest or choose another directory")
	}

	result := &Result{OutputDir: outputDir}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		tmplPath := path.Join(templatesDir, entry.Name())
		tmplBytes, err := fs.ReadFile(scaffoldFS, tmplPath)
		if err != nil {
			return nil, errors.Wrapf(err, "reading template %s", tmplPath)
		}

		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		outPath := filepath.Join(outputDir, outName)

		tmpl, err := template.New(entry.Name()).Parse(string(tmplBytes))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing template %s", entry.Name())
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, errors.Wrapf(err, "executing template %s", entry.Name())
		}

		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return nil, errors.Wrapf(err, "writing %s", outPath)
		}

		result.Files = append(result.Files, outName)
	}

	// Validate the generated manifest against the JSON Schema.
	for _, name := range manifest.FileNames(kind) {
		manifestFile := filepath.Join(outputDir, name)
		if _, err := os.Stat(manifestFile); err != nil {
			continue
		}
		valResult, valErr := manifest.ValidateFile(ctx, manifestFile)
		if valErr != nil {
			result.Warnings = append(result.Warnings,
				"Could not validate manifest: "+valErr.Error())
		} else if !valResult.Valid {
			for _, issue := range valResult.Issues {
				msg := issue.Message
				if issue.Path != "" {
					msg = issue.Path + ": " + msg
				}
				result.Warnings = append(result.Warnings, msg)
			}
		}
		break
	}

	return result, nil
}

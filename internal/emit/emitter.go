package emit

import (
	"bytes"
	"context"
	"embed"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/logging"
	"github.com/agentx-labs/wsgen/internal/workspace"
	"github.com/cockroachdb/errors"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var contentsTemplate = template.Must(
	template.New("contents.xml.tmpl").
		Funcs(template.FuncMap{"xml": escapeXML}).
		ParseFS(templateFS, "templates/contents.xml.tmpl"))

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const (
	contentsFile   = "contents.xml"
	projectFile    = "project"
	buildOrderFile = "build-order"
)

// WorkspaceGenerating emits the artifact tree for a workspace description
// and its graph, returning the absolute path of the workspace artifact.
type WorkspaceGenerating interface {
	Generate(ctx context.Context, ws *workspace.Description, path string, g *graph.Graph,
		opts config.Options, dir config.Directory) (string, error)
}

// Emitter writes artifacts through an afs.Service.
type Emitter struct {
	fs          afs.Service
	derivedRoot string
	log         *zap.SugaredLogger
}

var _ WorkspaceGenerating = (*Emitter)(nil)

// New returns an Emitter. derivedRoot is only used for the derived
// generation directory. A nil fs uses afs.New().
func New(fs afs.Service, derivedRoot string, log *zap.SugaredLogger) *Emitter {
	if fs == nil {
		fs = afs.New()
	}
	return &Emitter{fs: fs, derivedRoot: derivedRoot, log: logging.OrNop(log)}
}

// Generate writes the artifacts of ws and every project of g. Any failure is
// returned as *EmissionError.
func (e *Emitter) Generate(ctx context.Context, ws *workspace.Description, path string, g *graph.Graph,
	opts config.Options, dir config.Directory) (string, error) {
	out, err := e.generate(ctx, ws, path, g, opts, dir)
	if err != nil {
		return "", &EmissionError{Err: err}
	}
	return out, nil
}

// run carries the state of one Generate call.
type run struct {
	*Emitter
	ctx     context.Context
	layout  layout
	enc     encoder
	g       *graph.Graph
	verbose bool
	emitted map[string]string
	written int
}

func (e *Emitter) generate(ctx context.Context, ws *workspace.Description, path string, g *graph.Graph,
	opts config.Options, dir config.Directory) (string, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}
	l, err := newLayout(dir, e.derivedRoot, ws.Name, path)
	if err != nil {
		return "", err
	}
	enc, err := encoderFor(opts.Format)
	if err != nil {
		return "", err
	}
	r := &run{
		Emitter: e,
		ctx:     ctx,
		layout:  l,
		enc:     enc,
		g:       g,
		verbose: opts.Verbose,
		emitted: make(map[string]string),
	}

	for _, p := range g.Projects() {
		if err := r.project(p); err != nil {
			return "", err
		}
	}
	out := l.workspace(path, ws.Name, true)
	if err := r.workspace(ws, path, out); err != nil {
		return "", err
	}
	if err := r.buildOrder(ws, out); err != nil {
		return "", err
	}

	e.log.Infow("generated workspace",
		logging.FieldWorkspace, ws.Name,
		logging.FieldOutput, out,
		logging.FieldMode, string(l.dir),
		logging.FieldCount, r.written)
	return out, nil
}

func (r *run) project(p *graph.Project) error {
	d, err := describeProject(r.layout, r.g, p)
	if err != nil {
		return err
	}
	data, err := r.enc.marshal(d)
	if err != nil {
		return err
	}
	return r.write(filepath.Join(r.layout.project(p), projectFile+"."+r.enc.ext), data)
}

// workspace writes contents.xml for desc, loaded from location, into
// artifact and recurses into nested workspaces.
func (r *run) workspace(desc *workspace.Description, location, artifact string) error {
	if _, ok := r.emitted[artifact]; ok {
		return errors.Newf("workspace artifact %s would be written twice", artifact)
	}
	r.emitted[artifact] = location

	parent := filepath.Dir(artifact)
	refs := make([]string, 0, len(desc.Elements))
	for _, el := range desc.Elements {
		var target string
		switch el.Kind {
		case workspace.ElementProject:
			p, ok := r.g.ProjectAt(el.Path)
			if !ok {
				return &graph.DanglingReferenceError{Name: el.String(), From: desc.Name}
			}
			target = r.layout.project(p)
		case workspace.ElementWorkspace:
			nested, ok := r.g.Workspace(el.Path)
			if !ok {
				return &graph.DanglingReferenceError{Name: el.String(), From: desc.Name}
			}
			target = r.layout.workspace(el.Path, nested.Name, false)
			from, ok := r.emitted[target]
			switch {
			case !ok:
				if err := r.workspace(nested, el.Path, target); err != nil {
					return err
				}
			case from != el.Path:
				return errors.Newf("workspaces at %s and %s both map to %s", from, el.Path, target)
			}
		default:
			return errors.Newf("unknown workspace element %s", el)
		}
		ref, err := relative(parent, target)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	var buf bytes.Buffer
	err := contentsTemplate.Execute(&buf, struct {
		Name string
		Refs []string
	}{desc.Name, refs})
	if err != nil {
		return errors.Wrap(err, "rendering "+contentsFile)
	}
	return r.write(filepath.Join(artifact, contentsFile), buf.Bytes())
}

func (r *run) buildOrder(desc *workspace.Description, artifact string) error {
	d := buildOrderDescriptor{Workspace: desc.Name, Targets: []string{}}
	for _, ref := range r.g.BuildOrder() {
		d.Targets = append(d.Targets, ref.String())
	}
	data, err := r.enc.marshal(d)
	if err != nil {
		return err
	}
	return r.write(filepath.Join(artifact, buildOrderFile+"."+r.enc.ext), data)
}

// write stores data at file unless the existing content has the same
// fingerprint.
func (r *run) write(file string, data []byte) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	unchanged, err := r.unchanged(file, data)
	if err != nil {
		return err
	}
	if unchanged {
		r.log.Debugw("artifact unchanged", logging.FieldFile, file)
		return nil
	}
	if err := r.ensureDir(filepath.Dir(file)); err != nil {
		return err
	}
	if err := r.fs.Upload(r.ctx, file, 0644, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "writing %s", file)
	}
	r.written++
	if r.verbose {
		r.log.Infow("wrote artifact", logging.FieldFile, file)
	} else {
		r.log.Debugw("wrote artifact", logging.FieldFile, file)
	}
	return nil
}

func (r *run) unchanged(file string, data []byte) (bool, error) {
	exists, err := r.fs.Exists(r.ctx, file)
	if err != nil || !exists {
		return false, nil
	}
	existing, err := r.fs.DownloadWithURL(r.ctx, file)
	if err != nil {
		return false, nil
	}
	want, err := fingerprint(data)
	if err != nil {
		return false, err
	}
	have, err := fingerprint(existing)
	if err != nil {
		return false, err
	}
	return want == have, nil
}

func (r *run) ensureDir(dir string) error {
	exists, err := r.fs.Exists(r.ctx, dir)
	if err == nil && exists {
		return nil
	}
	if err := r.fs.Create(r.ctx, dir, os.ModeDir|0755, true); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	return nil
}

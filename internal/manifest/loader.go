package manifest

import (
	"context"
	"path/filepath"

	"github.com/agentx-labs/wsgen/internal/logging"
	"github.com/cockroachdb/errors"
	"github.com/viant/afs"
	"go.uber.org/zap"
)

// FileLoader loads manifests from storage through an afs.Service.
type FileLoader struct {
	fs  afs.Service
	log *zap.SugaredLogger
}

// NewFileLoader returns a loader reading through fs. A nil fs uses afs.New().
func NewFileLoader(fs afs.Service, log *zap.SugaredLogger) *FileLoader {
	if fs == nil {
		fs = afs.New()
	}
	return &FileLoader{fs: fs, log: logging.OrNop(log)}
}

// Abs returns the absolute, cleaned form of path.
func Abs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving absolute path of %s", path)
	}
	return abs, nil
}

// Detect reports which manifest kinds exist in the directory at location.
// It only checks for existence; an empty set is not an error.
func Detect(ctx context.Context, fs afs.Service, location string) Kinds {
	var kinds Kinds
	for _, kind := range AllKinds {
		if _, ok := find(ctx, fs, location, kind); ok {
			kinds = kinds.With(kind)
		}
	}
	return kinds
}

// Manifests reports which manifest kinds exist at location.
func (l *FileLoader) Manifests(ctx context.Context, location string) Kinds {
	kinds := Detect(ctx, l.fs, location)
	l.log.Debugw("detected manifests", logging.FieldPath, location, "kinds", kinds.String())
	return kinds
}

// ManifestPath returns the manifest file of kind at location.
func (l *FileLoader) ManifestPath(ctx context.Context, location string, kind Kind) (string, error) {
	file, ok := find(ctx, l.fs, location, kind)
	if !ok {
		return "", &NotFoundError{Path: location, Kind: kind}
	}
	return file, nil
}

// LoadProject reads the project manifest at location.
func (l *FileLoader) LoadProject(ctx context.Context, location string) (*Project, error) {
	file, data, err := l.read(ctx, location, KindProject)
	if err != nil {
		return nil, err
	}
	p, err := ParseProject(file, data, EncodingForFile(file))
	if err != nil {
		return nil, err
	}
	l.log.Debugw("loaded project manifest", logging.FieldProject, p.Name, logging.FieldFile, file)
	return p, nil
}

// LoadWorkspace reads the workspace manifest at location.
func (l *FileLoader) LoadWorkspace(ctx context.Context, location string) (*Workspace, error) {
	file, data, err := l.read(ctx, location, KindWorkspace)
	if err != nil {
		return nil, err
	}
	w, err := ParseWorkspace(file, data, EncodingForFile(file))
	if err != nil {
		return nil, err
	}
	l.log.Debugw("loaded workspace manifest", logging.FieldWorkspace, w.Name, logging.FieldFile, file)
	return w, nil
}

func (l *FileLoader) read(ctx context.Context, location string, kind Kind) (string, []byte, error) {
	file, ok := find(ctx, l.fs, location, kind)
	if !ok {
		return "", nil, &NotFoundError{Path: location, Kind: kind}
	}
	data, err := l.fs.DownloadWithURL(ctx, file)
	if err != nil {
		return "", nil, malformed(file, errors.Wrap(err, "reading manifest"))
	}
	return file, data, nil
}

// find returns the first existing manifest file of kind in location.
func find(ctx context.Context, fs afs.Service, location string, kind Kind) (string, bool) {
	for _, name := range fileNames[kind] {
		candidate := filepath.Join(location, name)
		if ok, err := fs.Exists(ctx, candidate); err == nil && ok {
			return candidate, true
		}
	}
	return "", false
}

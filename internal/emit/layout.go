package emit

import (
	"path/filepath"

	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/cockroachdb/errors"
)

const (
	workspaceExt = ".wsgen"
	projectExt   = ".genproj"
)

// layout maps workspaces and projects to artifact directories.
type layout struct {
	dir  config.Directory
	root string
}

func newLayout(dir config.Directory, derivedRoot, name, location string) (layout, error) {
	switch dir {
	case config.DirectoryManifest, "":
		return layout{dir: config.DirectoryManifest}, nil
	case config.DirectoryDerived:
		if derivedRoot == "" {
			return layout{}, errors.WithHint(
				errors.New("derived generation directory has no root"),
				"set "+config.KeyDerivedRoot+" in the config file")
		}
		id, err := pathID(location)
		if err != nil {
			return layout{}, err
		}
		return layout{dir: dir, root: filepath.Join(derivedRoot, name+"-"+id)}, nil
	default:
		return layout{}, errors.Newf("unknown generation directory %q", dir)
	}
}

// workspace returns the artifact directory of the workspace named name at
// location. top marks the workspace generation was requested for.
func (l layout) workspace(location, name string, top bool) string {
	if l.dir != config.DirectoryDerived {
		return filepath.Join(location, name+workspaceExt)
	}
	if top {
		return filepath.Join(l.root, name+workspaceExt)
	}
	return filepath.Join(l.root, "workspaces", name+workspaceExt)
}

// project returns the artifact directory of p.
func (l layout) project(p *graph.Project) string {
	if l.dir != config.DirectoryDerived {
		return filepath.Join(p.Path, p.Name()+projectExt)
	}
	return filepath.Join(l.root, "projects", p.Name()+projectExt)
}

// relative returns target relative to base, slash separated.
func relative(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", errors.Wrapf(err, "relating %s to %s", target, base)
	}
	return filepath.ToSlash(rel), nil
}

package cli

import (
	"github.com/agentx-labs/wsgen/internal/branding"
	"github.com/agentx-labs/wsgen/internal/emit"
	"github.com/agentx-labs/wsgen/internal/graph"
	"github.com/agentx-labs/wsgen/internal/manifest"
	"github.com/cockroachdb/errors"
)

// withHints attaches a user hint matching the kind of err.
func withHints(err error) error {
	var (
		notFound  *manifest.NotFoundError
		schema    *manifest.SchemaError
		malformed *manifest.MalformedError
		ambiguous *graph.AmbiguousIdentityError
		cycle     *graph.CycleError
		dangling  *graph.DanglingReferenceError
		emission  *emit.EmissionError
	)
	switch {
	case errors.As(err, &notFound):
		return errors.WithHintf(err,
			"run '%s init' to create a manifest, or pass a directory containing project.yaml or workspace.yaml",
			branding.CLIName())
	case errors.As(err, &schema):
		return errors.WithHint(err, "fix the listed fields; unknown keys are rejected")
	case errors.As(err, &malformed):
		return errors.WithHintf(err, "check the syntax of %s", malformed.Path)
	case errors.As(err, &ambiguous):
		return errors.WithHint(err, "project names must be unique within a graph; rename one of the projects")
	case errors.As(err, &cycle):
		return errors.WithHint(err, "remove one of the dependencies along the cycle")
	case errors.As(err, &dangling):
		return errors.WithHintf(err, "check the target and project names referenced by %s", dangling.From)
	case errors.As(err, &emission):
		return errors.WithHint(err, "check that the output directory is writable")
	}
	return err
}

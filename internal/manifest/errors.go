package manifest

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("manifest not found")

// NotFoundError reports that no manifest of Kind exists at Path. Kind is zero
// when no manifest of any kind was found.
type NotFoundError struct {
	Path string
	Kind Kind
}

func (e *NotFoundError) Error() string {
	if e.Kind == 0 {
		return fmt.Sprintf("no manifest found at %s", e.Path)
	}
	return fmt.Sprintf("no %s manifest found at %s", e.Kind, e.Path)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// MalformedError reports a manifest at Path that exists but cannot be used.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed manifest %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// SchemaError carries the schema issues that made a manifest malformed.
type SchemaError struct {
	Issues []ValidationIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			parts = append(parts, issue.Path+": "+issue.Message)
		} else {
			parts = append(parts, issue.Message)
		}
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

func malformed(path string, err error) error {
	return &MalformedError{Path: path, Err: err}
}

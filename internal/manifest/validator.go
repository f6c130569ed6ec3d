package manifest

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/viant/afs"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	//go:embed schema/project.schema.json
	projectSchemaBytes []byte

	//go:embed schema/workspace.schema.json
	workspaceSchemaBytes []byte
)

var (
	compiledSchemas map[Kind]*jsonschema.Schema
	compileOnce     sync.Once
	compileErr      error
	printer         = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/name", "/targets/0/product")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

// getSchema compiles the embedded JSON schemas once and returns the one for kind.
func getSchema(kind Kind) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		sources := map[Kind]struct {
			name string
			data []byte
		}{
			KindProject:   {"project.schema.json", projectSchemaBytes},
			KindWorkspace: {"workspace.schema.json", workspaceSchemaBytes},
		}

		c := jsonschema.NewCompiler()
		for _, src := range sources {
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(src.data))
			if err != nil {
				compileErr = errors.Wrapf(err, "unmarshaling schema %s", src.name)
				return
			}
			if err := c.AddResource(src.name, doc); err != nil {
				compileErr = errors.Wrapf(err, "adding schema resource %s", src.name)
				return
			}
		}

		compiled := make(map[Kind]*jsonschema.Schema, len(sources))
		for kind, src := range sources {
			s, err := c.Compile(src.name)
			if err != nil {
				compileErr = errors.Wrapf(err, "compiling schema %s", src.name)
				return
			}
			compiled[kind] = s
		}
		compiledSchemas = compiled
	})
	if compileErr != nil {
		return nil, compileErr
	}
	s, ok := compiledSchemas[kind]
	if !ok {
		return nil, errors.Newf("no schema for manifest kind %s", kind)
	}
	return s, nil
}

// Validate validates raw manifest bytes of the given kind and encoding
// against the embedded schema. The error return is for decode or schema
// compilation failures; validation issues are returned in the result.
func Validate(kind Kind, data []byte, enc Encoding) (*ValidationResult, error) {
	doc, err := decodeDocument(data, enc)
	if err != nil {
		return nil, err
	}
	return validateDocument(kind, doc)
}

// ValidateFile reads a manifest file and validates it. The kind and encoding
// are derived from the file name.
func ValidateFile(ctx context.Context, path string) (*ValidationResult, error) {
	kind, ok := KindForFile(path)
	if !ok {
		return nil, errors.Newf("%s is not a manifest file name", filepath.Base(path))
	}
	data, err := afs.New().DownloadWithURL(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading file %s", path)
	}
	return Validate(kind, data, EncodingForFile(path))
}

func validateDocument(kind Kind, doc interface{}) (*ValidationResult, error) {
	schema, err := getSchema(kind)
	if err != nil {
		return nil, errors.Wrap(err, "loading schema")
	}

	// Round-trip through JSON so the validator sees json.Number values.
	jsonData, err := json.Marshal(normalize(doc))
	if err != nil {
		return nil, errors.Wrap(err, "converting to JSON")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, "preparing JSON for validation")
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return nil, errors.Wrap(err, "unexpected validation error type")
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		msg := ""
		if ve.ErrorKind != nil {
			if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Container keywords carry no information of their own.
		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}

// normalize converts decoded YAML/TOML values into JSON-compatible types.
// YAML allows non-string map keys, which encoding/json rejects.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[k] = normalize(v)
		}
		return m
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalize(v)
		}
		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, v := range val {
			a[i] = normalize(v)
		}
		return a
	case []map[string]interface{}:
		a := make([]interface{}, len(val))
		for i, v := range val {
			a[i] = normalize(v)
		}
		return a
	default:
		return val
	}
}

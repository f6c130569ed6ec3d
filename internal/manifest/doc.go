// Package manifest reads project and workspace manifests. It detects which
// manifest kinds exist at a location, decodes YAML or TOML manifests into
// typed models, validates them against embedded JSON Schemas, and gates the
// declared format version. Every error it returns is either a *NotFoundError
// or a *MalformedError so callers can tell absent input from bad input.
package manifest

// Package emit writes the generated artifact tree for a workspace
// description and its dependency graph.
//
// A workspace artifact is a <Name>.wsgen directory holding contents.xml,
// which references every element relative to the artifact's parent, and a
// build-order descriptor. Each graph project gets a <Name>.genproj directory
// holding its resolved project descriptor. Files whose content is unchanged
// are left untouched, so re-running with the same inputs is a no-op on disk.
package emit

// Package graph resolves manifests into a dependency graph. Starting from a
// project or workspace location it loads every reachable project exactly
// once, in first-discovery order, rejecting ambiguous project names,
// dependency cycles and references to projects or targets that do not exist.
// A Graph returned without error is closed under the dependency relation and
// is not modified afterwards.
package graph

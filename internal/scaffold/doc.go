// Package scaffold writes starter manifests from embedded templates. It powers
// the "wsgen init" command, producing a project manifest with a single target
// or a workspace manifest listing the projects found below the directory.
package scaffold

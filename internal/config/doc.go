// Package config manages user-level settings stored at ~/.wsgen/config.yaml
// and the Generation value that parameterizes a single generate run
// (descriptor format, output directory policy, derived root).
package config

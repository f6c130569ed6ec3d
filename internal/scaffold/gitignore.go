package scaffold

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// GitignoreLines are the patterns excluding generated artifacts.
var GitignoreLines = []string{"*.wsgen/", "*.genproj/"}

// EnsureGitignore appends the generated artifact patterns to the .gitignore
// in dir, creating the file if needed. Lines already present are skipped.
// It returns the lines it added.
func EnsureGitignore(dir string) ([]string, error) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "reading .gitignore")
	}

	present := make(map[string]bool)
	for _, l := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(l)] = true
	}
	var missing []string
	for _, line := range GitignoreLines {
		if !present[line] {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	// Ensure there's a newline before our addition.
	suffix := strings.Join(missing, "\n") + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "opening .gitignore for append")
	}
	defer f.Close()

	if _, err := f.WriteString(suffix); err != nil {
		return nil, errors.Wrap(err, "writing to .gitignore")
	}
	return missing, nil
}

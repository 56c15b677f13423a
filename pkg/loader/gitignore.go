package loader

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// EnsureIgnored makes sure entry (a slash-separated path relative to
// projectDir, e.g. ".tasktable/view-state.json") is covered by the project's
// .gitignore so per-user files stay out of the repository.
//
// The function is idempotent. It will:
//   - Create .gitignore if it doesn't exist
//   - Append entry unless it, or a pattern for one of its parent
//     directories, is already present
//   - Preserve existing file content and formatting
func EnsureIgnored(projectDir, entry string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	gitignorePath := filepath.Join(projectDir, ".gitignore")

	alreadyPresent, err := isIgnored(gitignorePath, entry)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if alreadyPresent {
		return nil
	}

	return appendToGitignore(gitignorePath, entry)
}

// isIgnored checks if entry is already covered by the .gitignore file.
func isIgnored(path, entry string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if matchesPattern(line, entry) {
			return true, nil
		}
	}

	return false, scanner.Err()
}

// matchesPattern checks if a gitignore line covers entry: the entry itself
// or a directory pattern for any of its parents.
func matchesPattern(line, entry string) bool {
	normalized := strings.TrimPrefix(line, "/")
	entry = strings.Trim(entry, "/")

	if normalized == entry {
		return true
	}

	parts := strings.Split(entry, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/")
		for _, suffix := range []string{"", "/", "/*", "/**", "/**/*"} {
			if normalized == dir+suffix {
				return true
			}
		}
	}
	return false
}

// appendToGitignore appends a pattern to the .gitignore file.
// It creates the file if it doesn't exist.
// It ensures there's a newline before the pattern if the file doesn't end with one.
func appendToGitignore(path string, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	var toWrite string
	if len(content) == 0 {
		toWrite = "# tasktable per-user state\n" + pattern + "\n"
	} else {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n# tasktable per-user state\n" + pattern + "\n"
	}

	_, err = file.WriteString(toWrite)
	return err
}

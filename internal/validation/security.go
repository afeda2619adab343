// Package validation provides the traversal and path checks applied to every
// name a template or configuration file hands to the builder.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
)

// ValidateLogicalName rejects any template or data name that could escape a
// content root. The check is purely lexical and runs before any filesystem
// access.
func ValidateLogicalName(name string) error {
	if strings.TrimSpace(name) == "" {
		return siteerrors.New(siteerrors.KindTemplateNotFound, "empty template name")
	}

	normalized := strings.ReplaceAll(name, "\\", "/")
	if strings.Contains(normalized, "..") {
		return siteerrors.PathTraversal(name)
	}

	if strings.ContainsRune(normalized, 0) {
		return siteerrors.Newf(siteerrors.KindPathTraversal, "refusing to resolve %q: NUL byte in name", name)
	}

	return nil
}

// ValidateDir validates a configured directory. Directories must be relative
// to the project and must not climb out of it.
func ValidateDir(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	for _, segment := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected: %s", path)
		}
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">"}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateBasePath checks a deployment base path. Only a URL path is allowed:
// no scheme, no host, no query, and no fragment.
func ValidateBasePath(basePath string) error {
	if basePath == "" {
		return nil
	}

	parsed, err := url.Parse(basePath)
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}

	if parsed.Scheme != "" || parsed.Host != "" {
		return fmt.Errorf("base path must be a path, not a URL: %s", basePath)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("base path must not carry a query or fragment: %s", basePath)
	}

	dangerous := []string{"\"", "'", "<", ">", "\\", " ", "\n", "\r"}
	for _, char := range dangerous {
		if strings.Contains(basePath, char) {
			return fmt.Errorf("base path contains invalid character: %q", char)
		}
	}

	if strings.Contains(basePath, "..") {
		return fmt.Errorf("base path contains traversal: %s", basePath)
	}

	return nil
}

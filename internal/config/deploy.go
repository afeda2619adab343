package config

import (
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/conneroisu/sitegen/internal/validation"
)

// CustomDomainMarker is the file whose presence in the source root means the
// site is served from a domain root.
const CustomDomainMarker = "CNAME"

// Env looks up an environment variable.
type Env func(key string) string

// ResolveBasePath computes the deployment base path once per build.
//
// Precedence: explicit base_path, custom-domain marker ("/"), BASE_PATH,
// the repository name on GitHub Actions, and finally "/".
func ResolveBasePath(fs afero.Fs, cfg *Config, getenv Env) (string, error) {
	if cfg.BasePath != "" {
		return normalizeBasePath(cfg.BasePath)
	}

	if exists, _ := afero.Exists(fs, CustomDomainMarker); exists {
		return "/", nil
	}

	if getenv == nil {
		return "/", nil
	}

	if env := strings.TrimSpace(getenv("BASE_PATH")); env != "" {
		return normalizeBasePath(env)
	}

	if getenv("GITHUB_ACTIONS") == "true" {
		if repo := getenv("GITHUB_REPOSITORY"); repo != "" {
			name := repo[strings.LastIndex(repo, "/")+1:]
			// user.github.io repositories are served from the domain root
			if name != "" && !strings.HasSuffix(strings.ToLower(name), ".github.io") {
				return normalizeBasePath(name)
			}
		}
	}

	return "/", nil
}

func normalizeBasePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if err := validation.ValidateBasePath(p); err != nil {
		return "", err
	}

	cleaned := path.Clean("/" + strings.Trim(p, "/"))
	if cleaned == "/" {
		return "/", nil
	}

	return cleaned + "/", nil
}

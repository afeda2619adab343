// Package version reports how the sitegen binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version" yaml:"version"`
	Commit    string    `json:"commit" yaml:"commit"`
	BuildTime time.Time `json:"build_time" yaml:"build_time"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Modified  bool      `json:"modified" yaml:"modified"`
}

// Set at link time:
//
//	go build -ldflags "-X github.com/conneroisu/sitegen/internal/version.Version=v1.2.0"
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

const unknown = "unknown"

// Get collects version information from the link-time variables, falling
// back to the VCS stamps the Go toolchain embeds.
func Get() Info {
	return resolve(Version, Commit, BuildTime, readSettings())
}

func readSettings() map[string]string {
	settings := make(map[string]string)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		settings["main.version"] = info.Main.Version
	}
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

func resolve(ver, commit, built string, settings map[string]string) Info {
	info := Info{
		Version:   ver,
		Commit:    commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Modified:  settings["vcs.modified"] == "true",
	}

	if info.Commit == "" {
		info.Commit = settings["vcs.revision"]
	}
	if info.Version == "" || info.Version == "dev" {
		switch {
		case settings["main.version"] != "":
			info.Version = settings["main.version"]
		case len(info.Commit) >= 7:
			info.Version = "dev-" + info.Commit[:7]
		default:
			info.Version = "dev"
		}
	}
	if info.Commit == "" {
		info.Commit = unknown
	}

	if built == "" {
		built = settings["vcs.time"]
	}
	info.BuildTime = parseTime(built)

	return info
}

// Short returns a one-line version such as "v1.2.0 (abc1234)".
func (i Info) Short() string {
	if i.Commit == unknown || len(i.Commit) < 7 || strings.HasPrefix(i.Version, "dev-") {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.Commit[:7])
}

// IsRelease reports whether the binary was built from a tagged version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !strings.HasPrefix(i.Version, "dev-") && !i.Modified
}

// Detailed renders every known field, one per line.
func (i Info) Detailed() string {
	lines := []string{"Version: " + i.Version}
	if i.Commit != unknown {
		lines = append(lines, "Commit: "+i.Commit)
	}
	if !i.BuildTime.IsZero() {
		lines = append(lines, "Built: "+i.BuildTime.UTC().Format(time.RFC3339))
	}
	lines = append(lines, "Go: "+i.GoVersion, "Platform: "+i.Platform)
	if i.Modified {
		lines = append(lines, "Working tree: modified")
	}
	return strings.Join(lines, "\n")
}

func parseTime(s string) time.Time {
	if s == "" || s == unknown {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

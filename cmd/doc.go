// Package cmd provides the command-line interface for sitegen.
//
// # Available Commands
//
//   - build: Render the content tree into the output directory
//   - watch: Build, then rebuild whenever a source file changes
//   - check: Verify links and leftover directives in the output
//   - version: Show build information
//
// # Command Examples
//
//	// Build into dist/ for a root deployment
//	sitegen build
//
//	// Build for a project page served below /portfolio/
//	sitegen build --base-path /portfolio/ --clean
//
//	// Print the manifest as YAML without touching the output directory
//	sitegen build --dry-run --format yaml
//
//	// Verify the result
//	sitegen check --base-path /portfolio/
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (SITEGEN_*)
//  3. A .env file in the working directory
//  4. Configuration file (.sitegen.yml, --config, or SITEGEN_CONFIG_FILE)
//  5. Default values (lowest priority)
//
// Relative source and output directories are resolved against the working
// directory. Pages, partials, layouts, data, and static directories are
// relative to the source root.
//
// The deployment base path is resolved once per command: an explicit
// base_path wins, then a CNAME file in the source root, then BASE_PATH, then
// the repository name when running on GitHub Actions.
//
// # Error Handling
//
// A failed build prints one diagnostic line carrying the error kind, such as
//
//	build error: [TemplateNotFound] pages/index.html: template "partials.nav" not found (tried: ...)
//
// and exits with a non-zero status.
package cmd

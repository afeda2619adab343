// Package internal contains the core implementation packages for sitegen.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - resolver: Maps dotted template and data names to files in the content tree
//   - engine: Directive passes (@include, @layout, @json, @foreach, @jsonvar) and the render pipeline
//   - rewrite: Prefixes root-relative URLs in HTML and CSS with the deployment base path
//   - build: Batch builder, detail-page collections, static assets, image index, publishing
//   - jsondata: JSON decoding and encoding shared by the directives and the builder
//   - config: Configuration loading, validation, and base path resolution
//   - validation: Logical name and directory validation
//   - errors: The build error taxonomy
//   - logging: Structured logging on log/slog
//   - watcher: File system monitoring with debouncing
//   - linkcheck: Verification of a built output tree
//   - version: Build metadata
//
// # Data Flow
//
//   - Config resolves the base path once per build
//   - Build walks the pages root and hands each page to the engine
//   - Engine resolves names through the resolver and decodes data with jsondata
//   - Rewrite runs last on every rendered page and stylesheet
//   - Build publishes each output and records it in the manifest
//   - Watcher triggers a fresh build after a burst of source changes
//
// # Security Considerations
//
// Every logical name and configured directory is checked by the validation
// package before it reaches the filesystem. Names containing a ".." segment
// are rejected instead of resolved.
//
// For detailed documentation, see the individual package documentation.
package internal

package engine

import (
	"regexp"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
)

// Directive grammar. Quoted arguments accept single or double quotes and
// match non-greedily up to the closing quote.
var (
	includePattern = regexp.MustCompile(`@include\(\s*(?:'([^']*)'|"([^"]*)")\s*\)`)

	// Directive-only lines vanish together with their line break.
	layoutPattern = regexp.MustCompile(`@layout\(\s*(?:'([^']*)'|"([^"]*)")\s*\)[ \t]*(?:\r?\n)?`)
	jsonPattern   = regexp.MustCompile(`@json\(\s*(?:'([^']*)'|"([^"]*)")\s*(?:,\s*\$?([A-Za-z_][A-Za-z0-9_]*)\s*)?\)[ \t]*(?:\r?\n)?`)

	jsonVarPattern = regexp.MustCompile(`@jsonvar\s+\$?([A-Za-z_][A-Za-z0-9_]*)`)

	loopTokenPattern  = regexp.MustCompile(`@(?:end)?foreach\b`)
	loopHeaderPattern = regexp.MustCompile(`^@foreach(?:\s*\(\s*\$?([A-Za-z_][A-Za-z0-9_]*)\s*\)|[ \t]+\$?([A-Za-z_][A-Za-z0-9_]*))\s*`)
	loopEndPattern    = regexp.MustCompile(`^@endforeach(?:[ \t]*\r?\n)?`)

	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

	// directiveTokenPattern finds anything that opens a directive, whether
	// or not the rest of it parses.
	directiveTokenPattern = regexp.MustCompile(`@(?:include|layout|json)\(|@jsonvar\b`)
)

// contentSlot is the layout token replaced by the rendered page body.
const contentSlot = "{{ content }}"

// quoted returns whichever quote group of a directive match was populated.
func quoted(groups []string) string {
	if groups[1] != "" {
		return groups[1]
	}
	return groups[2]
}

// checkDirectives fails on the first directive token that none of the
// directive patterns accepts at that position. Includes and layouts must
// already be expanded and stripped, so any that remain are malformed.
func checkDirectives(text string) error {
	valid := make(map[int]bool)
	for _, pattern := range []*regexp.Regexp{jsonPattern, jsonVarPattern} {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			valid[loc[0]] = true
		}
	}

	for _, loc := range directiveTokenPattern.FindAllStringIndex(text, -1) {
		if !valid[loc[0]] {
			return siteerrors.Newf(siteerrors.KindMalformedDirective,
				"cannot parse directive %q", snippet(text[loc[0]:]))
		}
	}
	return nil
}

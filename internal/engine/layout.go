package engine

import (
	"context"
	"strings"
)

// ExtractLayout finds the first @layout directive, strips it, and returns
// the layout name. found is false when the page has no layout.
func ExtractLayout(text string) (name, rest string, found bool) {
	loc := layoutPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text, false
	}

	groups := make([]string, 3)
	for i := 1; i < 3; i++ {
		if loc[2*i] >= 0 {
			groups[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}

	return quoted(groups), text[:loc[0]] + text[loc[1]:], true
}

// stripLayouts removes any @layout directive left after extraction, such as
// one carried in by an included partial. Only the page's own first directive
// selects a layout.
func (e *Engine) stripLayouts(ctx context.Context, text string) string {
	if !layoutPattern.MatchString(text) {
		return text
	}

	e.logger.Debug(ctx, "Ignoring nested @layout directives")
	return layoutPattern.ReplaceAllString(text, "")
}

// InjectContent places body into the layout's content slot (first
// occurrence only). ok is false when the layout has no slot.
func InjectContent(layout, body string) (string, bool) {
	if !strings.Contains(layout, contentSlot) {
		return layout, false
	}
	return strings.Replace(layout, contentSlot, body, 1), true
}

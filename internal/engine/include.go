package engine

import (
	"context"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
)

// MaxIncludeDepth bounds nested include expansion. A self-referential
// include never reaches a fixed point and trips this ceiling.
const MaxIncludeDepth = 20

// ExpandIncludes replaces every @include directive with the named partial,
// repeating until no directive remains.
func (e *Engine) ExpandIncludes(ctx context.Context, text string) (string, error) {
	for depth := 0; includePattern.MatchString(text); depth++ {
		if depth >= MaxIncludeDepth {
			match := includePattern.FindStringSubmatch(text)
			return "", siteerrors.Newf(siteerrors.KindIncludeRecursionExceeded,
				"include of %q still unresolved after %d levels; check for an include cycle", quoted(match), MaxIncludeDepth)
		}

		var expandErr error
		text = includePattern.ReplaceAllStringFunc(text, func(match string) string {
			if expandErr != nil {
				return match
			}

			name := quoted(includePattern.FindStringSubmatch(match))
			resolved, content, err := e.resolver.Read(name)
			if err != nil {
				expandErr = err
				return match
			}

			e.logger.Debug(ctx, "Include expanded", "name", name, "path", resolved, "depth", depth+1)
			return content
		})
		if expandErr != nil {
			return "", expandErr
		}
	}

	return text, nil
}

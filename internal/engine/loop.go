package engine

import (
	"context"
	"strings"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
)

// MaxLoopExpansions bounds the number of loop blocks expanded in one pass.
const MaxLoopExpansions = 1000

// loopNode is one @foreach ... @endforeach block. Body holds text
// segments and nested loops in document order.
type loopNode struct {
	variable string
	offset   int
	body     []interface{}
}

// parseLoops splits text into literal strings and *loopNode blocks.
// @foreach and @endforeach pair by nesting depth.
func parseLoops(text string) ([]interface{}, error) {
	root := &loopNode{}
	stack := []*loopNode{root}
	idx := 0
	segmentStart := 0

	flush := func(end int) {
		if end > segmentStart {
			top := stack[len(stack)-1]
			top.body = append(top.body, text[segmentStart:end])
		}
	}

	for {
		loc := loopTokenPattern.FindStringIndex(text[idx:])
		if loc == nil {
			break
		}
		start := idx + loc[0]

		if strings.HasPrefix(text[start:], "@endforeach") {
			if len(stack) == 1 {
				return nil, siteerrors.Newf(siteerrors.KindUnmatchedEndforeach,
					"@endforeach at offset %d has no matching @foreach", start)
			}
			flush(start)

			end := loopEndPattern.FindStringIndex(text[start:])
			idx = start + end[1]
			segmentStart = idx

			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.body = append(parent.body, closed)
			continue
		}

		header := loopHeaderPattern.FindStringSubmatchIndex(text[start:])
		if header == nil {
			return nil, siteerrors.Newf(siteerrors.KindMalformedForeachHeader,
				"cannot parse loop header %q", snippet(text[start:]))
		}
		flush(start)

		variable := submatch(text[start:], header, 1)
		if variable == "" {
			variable = submatch(text[start:], header, 2)
		}

		stack = append(stack, &loopNode{variable: variable, offset: start})
		idx = start + header[1]
		segmentStart = idx
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, siteerrors.Newf(siteerrors.KindMissingEndforeach,
			"@foreach $%s at offset %d has no matching @endforeach", open.variable, open.offset)
	}

	flush(len(text))
	return root.body, nil
}

// ExpandLoops expands every @foreach block against c. Loop bodies receive
// placeholder substitution only; nested loops are looked up in the
// enclosing element first.
func (e *Engine) ExpandLoops(ctx context.Context, text string, c Context) (string, error) {
	if !loopTokenPattern.MatchString(text) {
		return text, nil
	}

	nodes, err := parseLoops(text)
	if err != nil {
		return "", err
	}

	r := &loopRenderer{engine: e, ctx: ctx}
	var out strings.Builder
	if err := r.render(&out, nodes, c, false); err != nil {
		return "", err
	}

	return out.String(), nil
}

type loopRenderer struct {
	engine     *Engine
	ctx        context.Context
	expansions int
}

func (r *loopRenderer) render(out *strings.Builder, nodes []interface{}, s scope, inLoop bool) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case string:
			if inLoop {
				out.WriteString(substitute(n, s))
			} else {
				out.WriteString(n)
			}
		case *loopNode:
			if err := r.expand(out, n, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *loopRenderer) expand(out *strings.Builder, n *loopNode, s scope) error {
	r.expansions++
	if r.expansions > MaxLoopExpansions {
		return siteerrors.Newf(siteerrors.KindExcessiveLoopExpansion,
			"more than %d loop expansions while rendering $%s", MaxLoopExpansions, n.variable)
	}

	value, ok := s.lookup(n.variable)
	if !ok {
		return siteerrors.Newf(siteerrors.KindUndefinedLoopVariable, "@foreach $%s: variable is not defined", n.variable)
	}
	items, ok := List(value)
	if !ok {
		return siteerrors.Newf(siteerrors.KindLoopVariableNotAList,
			"@foreach $%s: expected a list, got %s", n.variable, typeName(value))
	}

	for i, item := range items {
		if err := r.render(out, n.body, newItemScope(item, i+1, s), true); err != nil {
			return err
		}
	}

	r.engine.logger.Debug(r.ctx, "Loop expanded", "var", n.variable, "items", len(items))
	return nil
}

func snippet(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}

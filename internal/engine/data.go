package engine

import (
	"context"
	"path"
	"strings"

	"github.com/spf13/afero"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/jsondata"
)

// ApplyJSON loads every @json directive in order, binding each parsed file
// into c, and removes the directives from the text. Later bindings with the
// same name overwrite earlier ones.
func (e *Engine) ApplyJSON(ctx context.Context, text string, c Context) (string, error) {
	matches := jsonPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var out strings.Builder
	last := 0
	for _, loc := range matches {
		out.WriteString(text[last:loc[0]])
		last = loc[1]

		name := submatch(text, loc, 1)
		if name == "" {
			name = submatch(text, loc, 2)
		}
		varName := submatch(text, loc, 3)

		value, resolved, err := e.LoadData(name)
		if err != nil {
			return "", err
		}
		if varName == "" {
			varName = strings.TrimSuffix(path.Base(resolved), path.Ext(resolved))
		}

		c.Set(varName, value)
		e.logger.Debug(ctx, "Data bound", "name", name, "path", resolved, "var", varName)
	}
	out.WriteString(text[last:])

	return out.String(), nil
}

// LoadData resolves and parses a JSON data file.
func (e *Engine) LoadData(name string) (interface{}, string, error) {
	resolved, err := e.resolver.ResolveData(name)
	if err != nil {
		return nil, "", err
	}

	raw, err := afero.ReadFile(e.resolver.Fs(), resolved)
	if err != nil {
		return nil, "", siteerrors.WrapIO(err, resolved, "reading data file")
	}

	value, err := jsondata.Decode(raw)
	if err != nil {
		return nil, "", siteerrors.InvalidJSONData(resolved, err)
	}

	return value, resolved, nil
}

func submatch(text string, loc []int, group int) string {
	if loc[2*group] < 0 {
		return ""
	}
	return text[loc[2*group]:loc[2*group+1]]
}

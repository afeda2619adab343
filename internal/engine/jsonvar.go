package engine

import (
	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/conneroisu/sitegen/internal/jsondata"
)

// ApplyJSONVars replaces each @jsonvar directive with the JSON form of the
// named binding. Non-ASCII text and HTML characters are left unescaped.
func ApplyJSONVars(text string, c Context) (string, error) {
	if !jsonVarPattern.MatchString(text) {
		return text, nil
	}

	var applyErr error
	text = jsonVarPattern.ReplaceAllStringFunc(text, func(match string) string {
		if applyErr != nil {
			return match
		}

		name := jsonVarPattern.FindStringSubmatch(match)[1]
		value, ok := c.lookup(name)
		if !ok {
			applyErr = siteerrors.Newf(siteerrors.KindUndefinedJSONVar, "@jsonvar %s: variable is not defined", name)
			return match
		}

		encoded, err := jsondata.Marshal(value)
		if err != nil {
			applyErr = &siteerrors.BuildError{
				Kind:    siteerrors.KindJSONSerializationFailed,
				Message: "@jsonvar " + name + ": cannot serialize value",
				Cause:   err,
			}
			return match
		}

		return string(encoded)
	})
	if applyErr != nil {
		return "", applyErr
	}

	return text, nil
}

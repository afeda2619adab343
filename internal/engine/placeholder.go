package engine

// Substitute replaces {{ name }} placeholders with scalar bindings from c.
// Unbound names and non-scalar values render as the empty string.
func Substitute(text string, c Context) string {
	return substitute(text, c)
}

func substitute(text string, s scope) string {
	if !placeholderPattern.MatchString(text) {
		return text
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := s.lookup(name)
		if !ok {
			return ""
		}
		str, ok := Scalar(value)
		if !ok {
			return ""
		}
		return str
	})
}

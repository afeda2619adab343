package engine

import (
	"fmt"

	"github.com/spf13/cast"
)

// Context holds the variable bindings of one page render. It is created
// fresh for every render call and never shared between pages.
type Context map[string]interface{}

// NewContext creates an empty context.
func NewContext() Context {
	return make(Context)
}

// Set binds name, replacing any earlier binding.
func (c Context) Set(name string, value interface{}) {
	c[name] = value
}

// Merge copies every binding from vars into c.
func (c Context) Merge(vars map[string]interface{}) {
	for k, v := range vars {
		c[k] = v
	}
}

func (c Context) lookup(name string) (interface{}, bool) {
	v, ok := c[name]
	return v, ok
}

// scope resolves names during substitution. Loop iterations layer an item
// scope over the page context.
type scope interface {
	lookup(name string) (interface{}, bool)
}

// itemScope binds one loop element. Its keys shadow the enclosing scope.
type itemScope struct {
	vars   map[string]interface{}
	parent scope
}

func newItemScope(element interface{}, index int, parent scope) *itemScope {
	vars := make(map[string]interface{})
	if m, ok := element.(map[string]interface{}); ok {
		for k, v := range m {
			vars[k] = v
		}
	} else {
		vars["value"] = element
	}
	vars["index"] = index

	return &itemScope{vars: vars, parent: parent}
}

func (s *itemScope) lookup(name string) (interface{}, bool) {
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	if s.parent == nil {
		return nil, false
	}
	return s.parent.lookup(name)
}

// Scalar returns the string form of a scalar value. Lists and mappings are
// not scalars and report false.
func Scalar(v interface{}) (string, bool) {
	switch v.(type) {
	case nil:
		return "", true
	case []interface{}, map[string]interface{}, []map[string]interface{}:
		return "", false
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// List normalizes the list shapes a context may hold. ok is false for
// anything that is not a list.
func List(v interface{}) ([]interface{}, bool) {
	switch list := v.(type) {
	case []interface{}:
		return list, true
	case []map[string]interface{}:
		out := make([]interface{}, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]interface{}, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// typeName describes a runtime value in JSON terms for diagnostics.
func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

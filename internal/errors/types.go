// Package errors defines the build error taxonomy shared by the resolver,
// the directive passes, and the batch builder.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind represents a category of build failure.
type Kind string

const (
	KindPathTraversal            Kind = "PathTraversal"
	KindTemplateNotFound         Kind = "TemplateNotFound"
	KindIncludeRecursionExceeded Kind = "IncludeRecursionExceeded"
	KindInvalidJSONData          Kind = "InvalidJsonData"
	KindUndefinedLoopVariable    Kind = "UndefinedLoopVariable"
	KindLoopVariableNotAList     Kind = "LoopVariableNotAList"
	KindMalformedForeachHeader   Kind = "MalformedForeachHeader"
	KindMalformedDirective       Kind = "MalformedDirective"
	KindMissingEndforeach        Kind = "MissingEndforeach"
	KindUnmatchedEndforeach      Kind = "UnmatchedEndforeach"
	KindExcessiveLoopExpansion   Kind = "ExcessiveLoopExpansion"
	KindUndefinedJSONVar         Kind = "UndefinedJsonVar"
	KindJSONSerializationFailed  Kind = "JsonSerializationFailed"
	KindInvalidCollection        Kind = "InvalidCollection"
	KindConfig                   Kind = "Config"
	KindIO                       Kind = "IO"
	KindInternal                 Kind = "Internal"
)

// BuildError is the single error type surfaced by a site build.
type BuildError struct {
	Kind    Kind
	Message string
	Path    string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s]", e.Kind))
	if e.Path != "" {
		parts = append(parts, e.Path+":")
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a BuildError of the same Kind.
func (e *BuildError) Is(target error) bool {
	var t *BuildError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}

	return false
}

// WithPath records the file being processed when the error occurred.
// An already-set path is kept, so the innermost location wins.
func (e *BuildError) WithPath(path string) *BuildError {
	if e.Path == "" {
		e.Path = path
	}

	return e
}

// WithContext adds context information to the error.
func (e *BuildError) WithContext(key string, value interface{}) *BuildError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// New creates a BuildError of the given kind.
func New(kind Kind, message string) *BuildError {
	return &BuildError{Kind: kind, Message: message}
}

// Newf creates a BuildError with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *BuildError {
	return &BuildError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinels usable with errors.Is.
var (
	ErrPathTraversal            = New(KindPathTraversal, "path traversal")
	ErrTemplateNotFound         = New(KindTemplateNotFound, "template not found")
	ErrIncludeRecursionExceeded = New(KindIncludeRecursionExceeded, "include recursion exceeded")
	ErrInvalidJSONData          = New(KindInvalidJSONData, "invalid json data")
	ErrUndefinedLoopVariable    = New(KindUndefinedLoopVariable, "undefined loop variable")
	ErrLoopVariableNotAList     = New(KindLoopVariableNotAList, "loop variable is not a list")
	ErrMalformedForeachHeader   = New(KindMalformedForeachHeader, "malformed foreach header")
	ErrMalformedDirective       = New(KindMalformedDirective, "malformed directive")
	ErrMissingEndforeach        = New(KindMissingEndforeach, "missing endforeach")
	ErrUnmatchedEndforeach      = New(KindUnmatchedEndforeach, "unmatched endforeach")
	ErrExcessiveLoopExpansion   = New(KindExcessiveLoopExpansion, "excessive loop expansion")
	ErrUndefinedJSONVar         = New(KindUndefinedJSONVar, "undefined jsonvar")
	ErrJSONSerializationFailed  = New(KindJSONSerializationFailed, "json serialization failed")
	ErrInvalidCollection        = New(KindInvalidCollection, "invalid collection")
)

// KindOf returns the Kind of the first BuildError in err's chain, or
// KindInternal for foreign errors.
func KindOf(err error) Kind {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind
	}

	return KindInternal
}

// IsKind reports whether err carries a BuildError of the given kind.
func IsKind(err error, kind Kind) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind == kind
	}

	return false
}

// Helper constructors for the taxonomy.

// PathTraversal reports a name containing a parent-directory segment.
func PathTraversal(name string) *BuildError {
	return Newf(KindPathTraversal, "refusing to resolve %q: parent-directory segments are not allowed", name)
}

// TemplateNotFound reports a failed resolution listing every candidate tried.
func TemplateNotFound(name string, candidates []string) *BuildError {
	return Newf(KindTemplateNotFound, "template %q not found (tried: %s)", name, strings.Join(candidates, ", ")).
		WithContext("candidates", candidates)
}

// InvalidJSONData reports a data file that failed to parse.
func InvalidJSONData(path string, cause error) *BuildError {
	return &BuildError{
		Kind:    KindInvalidJSONData,
		Message: fmt.Sprintf("invalid JSON in %s", path),
		Path:    path,
		Cause:   cause,
	}
}

package errors

import (
	"errors"
)

// Wrap converts a foreign error into a BuildError of the given kind. BuildErrors
// pass through untouched so the original taxonomy is never downgraded.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}

	var be *BuildError
	if errors.As(err, &be) {
		return err
	}

	return &BuildError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps a filesystem failure.
func WrapIO(err error, path, message string) error {
	if err == nil {
		return nil
	}

	var be *BuildError
	if errors.As(err, &be) {
		return err
	}

	return &BuildError{
		Kind:    KindIO,
		Message: message,
		Path:    path,
		Cause:   err,
	}
}

// AtPath annotates err with the file being processed. Foreign errors are
// wrapped as internal failures.
func AtPath(err error, path string) error {
	if err == nil {
		return nil
	}

	var be *BuildError
	if errors.As(err, &be) {
		be.WithPath(path)
		return err
	}

	return &BuildError{
		Kind:    KindInternal,
		Message: "unexpected failure",
		Path:    path,
		Cause:   err,
	}
}

// Diagnostic renders err as a single line suitable for the CLI's failure output.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}

	var be *BuildError
	if errors.As(err, &be) {
		return "build error: " + be.Error()
	}

	return "build error: [" + string(KindInternal) + "] " + err.Error()
}

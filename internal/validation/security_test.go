package validation

import (
	"testing"

	siteerrors "github.com/conneroisu/sitegen/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidateLogicalName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind siteerrors.Kind
	}{
		{name: "dotted name", input: "partials.header"},
		{name: "slash name", input: "partials/header.html"},
		{name: "parent segment", input: "../secrets", wantKind: siteerrors.KindPathTraversal},
		{name: "dotted parent", input: "partials...secret", wantKind: siteerrors.KindPathTraversal},
		{name: "nested parent", input: "a/../../b", wantKind: siteerrors.KindPathTraversal},
		{name: "windows parent", input: "a\\..\\b", wantKind: siteerrors.KindPathTraversal},
		{name: "empty", input: "  ", wantKind: siteerrors.KindTemplateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogicalName(tt.input)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, siteerrors.IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestValidateDir(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple", path: "pages"},
		{name: "nested", path: "./content/pages"},
		{name: "absolute output", path: "/tmp/site"},
		{name: "empty", path: "", wantErr: true},
		{name: "traversal", path: "../outside", wantErr: true},
		{name: "shell chars", path: "dist;rm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDir(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBasePath(t *testing.T) {
	valid := []string{"", "/", "/repo/", "/org/repo"}
	for _, p := range valid {
		assert.NoError(t, ValidateBasePath(p), p)
	}

	invalid := []string{"https://example.com/repo/", "//cdn.example.com/", "/repo/?x=1", "/a/../b", "/re po/"}
	for _, p := range invalid {
		assert.Error(t, ValidateBasePath(p), p)
	}
}

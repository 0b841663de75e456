package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// moduleNameRegex matches names that are legal inside a Verilog identifier.
// Module names end up as "tt_um_<name>" macro names.
var moduleNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateModuleName checks that name can be used to build a macro and
// instance name.
func ValidateModuleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModule, "module name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidModule, "module name too long (max 128 characters): %q", name)
	}
	if !moduleNameRegex.MatchString(name) {
		return New(ErrCodeInvalidModule, "module name %q must only contain letters, digits and underscores", name)
	}
	return nil
}

// ValidateLayerName checks a routing layer reference from the configuration.
func ValidateLayerName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "layer name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "layer name %q contains invalid characters", name)
		}
	}
	return nil
}

// ValidatePath validates an output file path given on the command line or
// through the API. It rejects empty paths, control characters and
// parent-directory traversal.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

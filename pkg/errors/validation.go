package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxFQNLength bounds fully qualified names accepted from record files.
const maxFQNLength = 1024

// ValidateFQN validates a fully qualified type name read from extracted
// declaration data.
//
// The rules are intentionally language-agnostic:
//   - No empty names
//   - No whitespace or control characters
//   - No leading, trailing or doubled namespace separators
//   - Maximum length of 1024 characters
//
// A single leading backslash (PHP global namespace marker) is accepted.
func ValidateFQN(fqn string) error {
	if fqn == "" {
		return New(ErrCodeInvalidDeclaration, "fully qualified name cannot be empty")
	}

	if len(fqn) > maxFQNLength {
		return New(ErrCodeInvalidDeclaration, "fully qualified name too long (max %d characters)", maxFQNLength)
	}

	for _, r := range fqn {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidDeclaration, "fully qualified name %q contains whitespace or control characters", fqn)
		}
	}

	name := strings.TrimPrefix(fqn, `\`)
	if name == "" || strings.HasSuffix(name, `\`) || strings.HasPrefix(name, `\`) || strings.Contains(name, `\\`) {
		return New(ErrCodeInvalidDeclaration, "fully qualified name %q has an empty namespace segment", fqn)
	}

	return nil
}

// ValidateDependencyKind validates a raw dependency kind. Unknown kinds are
// fine, empty or unprintable ones are not.
func ValidateDependencyKind(kind string) error {
	if kind == "" {
		return New(ErrCodeInvalidInput, "dependency kind cannot be empty")
	}
	for _, r := range kind {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "dependency kind %q contains invalid characters", kind)
		}
	}
	return nil
}

// snapshotIDRegex matches canonical lowercase UUID strings.
var snapshotIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateSnapshotID validates a snapshot identifier before it is used as a
// file name or database key.
func ValidateSnapshotID(id string) error {
	if !snapshotIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid snapshot id: %q", id)
	}
	return nil
}

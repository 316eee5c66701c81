package errors

import (
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	fqn := func(s string) error { return ValidateFQN(s) }
	kind := func(s string) error { return ValidateDependencyKind(s) }
	snap := func(s string) error { return ValidateSnapshotID(s) }

	tests := []struct {
		name     string
		validate func(string) error
		input    string
		wantCode Code
	}{
		{"fqn simple", fqn, "Foo", ""},
		{"fqn namespaced", fqn, `App\Models\User`, ""},
		{"fqn global marker", fqn, `\App\Models\User`, ""},
		{"fqn dotted", fqn, "com.example.Foo", ""},
		{"fqn empty", fqn, "", ErrCodeInvalidDeclaration},
		{"fqn only separator", fqn, `\`, ErrCodeInvalidDeclaration},
		{"fqn trailing separator", fqn, `App\Models\`, ErrCodeInvalidDeclaration},
		{"fqn doubled separator", fqn, `App\\Models`, ErrCodeInvalidDeclaration},
		{"fqn space", fqn, "App Models", ErrCodeInvalidDeclaration},
		{"fqn null byte", fqn, "App\x00Models", ErrCodeInvalidDeclaration},
		{"fqn too long", fqn, strings.Repeat("a", maxFQNLength+1), ErrCodeInvalidDeclaration},

		{"kind known", kind, "usesTrait", ""},
		{"kind unknown", kind, "annotatedBy", ""},
		{"kind empty", kind, "", ErrCodeInvalidInput},
		{"kind space", kind, "uses trait", ErrCodeInvalidInput},
		{"kind control", kind, "use\x01", ErrCodeInvalidInput},

		{"snapshot uuid", snap, "6f1c3f0e-8d1a-4b7e-9c55-0a3e7d2b4f10", ""},
		{"snapshot uppercase", snap, "6F1C3F0E-8D1A-4B7E-9C55-0A3E7D2B4F10", ErrCodeInvalidInput},
		{"snapshot traversal", snap, "../6f1c3f0e", ErrCodeInvalidInput},
		{"snapshot empty", snap, "", ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.validate(tt.input)); got != tt.wantCode {
				t.Errorf("%q: code = %q, want %q", tt.input, got, tt.wantCode)
			}
		})
	}
}

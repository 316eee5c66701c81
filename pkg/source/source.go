// Package source defines the input contract between the extraction
// collaborator and the graph builder.
//
// An extractor (a parser for some source language, not part of this module)
// produces one [Record] per declared type: the [Declaration] itself plus the
// [Dependency] facts discovered in its body. Records are plain data and are
// never mutated after extraction.
//
// # File Format
//
// Records are exchanged as a JSON array:
//
//	[
//	  {
//	    "declaration": {
//	      "name": "User",
//	      "namespace": "App\\Models",
//	      "fullyQualifiedName": "App\\Models\\User",
//	      "filePath": "src/Models/User.php",
//	      "docCommentLines": ["The application user."],
//	      "kind": "class",
//	      "isAbstract": false,
//	      "isFinal": true
//	    },
//	    "dependencies": [
//	      {"sourceFQN": "App\\Models\\User", "targetFQN": "App\\Models\\Model", "kind": "extends"}
//	    ]
//	  }
//	]
//
// # Ordering
//
// Build outcomes depend on record order (see the build package). [LoadFiles]
// reads several files concurrently and merges them with [Merge], which sorts
// records by declaration FQN so the result is independent of scheduling.
package source

import "github.com/matzehuels/classgraph/pkg/errors"

// DeclarationKind is the kind of a declared type.
type DeclarationKind string

// Declaration kinds.
const (
	KindClass     DeclarationKind = "class"
	KindInterface DeclarationKind = "interface"
	KindTrait     DeclarationKind = "trait"
)

// Valid reports whether k is one of the known declaration kinds.
func (k DeclarationKind) Valid() bool {
	switch k {
	case KindClass, KindInterface, KindTrait:
		return true
	}
	return false
}

// DependencyKind is the raw, open-ended kind of a dependency fact.
// Extractors may emit kinds beyond the known ones; they are carried through
// and counted under their own statistics bucket.
type DependencyKind string

// Known dependency kinds.
const (
	DepUse        DependencyKind = "use"
	DepExtends    DependencyKind = "extends"
	DepImplements DependencyKind = "implements"
	DepUsesTrait  DependencyKind = "usesTrait"
)

// IsInheritance reports whether the kind participates in circularity checks
// (extends or implements).
func (k DependencyKind) IsInheritance() bool {
	return k == DepExtends || k == DepImplements
}

// Declaration is an extracted class, interface or trait.
// FullyQualifiedName is the identity key.
type Declaration struct {
	Name               string          `json:"name"`
	Namespace          string          `json:"namespace"`
	FullyQualifiedName string          `json:"fullyQualifiedName"`
	FilePath           string          `json:"filePath"`
	DocCommentLines    []string        `json:"docCommentLines,omitempty"`
	Kind               DeclarationKind `json:"kind"`

	// Class-only flags. Ignored for interfaces and traits.
	IsAbstract bool `json:"isAbstract,omitempty"`
	IsFinal    bool `json:"isFinal,omitempty"`
}

// Dependency is a directed, kind-tagged relationship between two FQNs.
type Dependency struct {
	SourceFQN string         `json:"sourceFQN"`
	TargetFQN string         `json:"targetFQN"`
	Kind      DependencyKind `json:"kind"`
}

// Record pairs a declaration with the dependencies extracted from it.
type Record struct {
	Declaration  Declaration  `json:"declaration"`
	Dependencies []Dependency `json:"dependencies"`
}

// Validate checks the record for malformed names and kinds.
//
// Declarations of an unknown kind and dependencies with an empty endpoint
// pass: the builder skips the former and counts the latter as invalid or
// missing.
func (r Record) Validate() error {
	d := r.Declaration
	if err := errors.ValidateFQN(d.FullyQualifiedName); err != nil {
		return err
	}
	for i, dep := range r.Dependencies {
		if err := errors.ValidateDependencyKind(string(dep.Kind)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err,
				"declaration %s dependency %d", d.FullyQualifiedName, i)
		}
	}
	return nil
}

// DependencyCount returns the total number of dependency facts in records.
func DependencyCount(records []Record) int {
	n := 0
	for _, r := range records {
		n += len(r.Dependencies)
	}
	return n
}

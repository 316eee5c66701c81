package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/classgraph/internal/orderedjson"
	"github.com/matzehuels/classgraph/pkg/source"
)

// =============================================================================
// Node - Declared Type
// =============================================================================

// Node is a declared type in the dependency graph. Its ID is the fully
// qualified name of the declaration.
//
// Meta is a tagged variant chosen by Kind: [ClassMetadata] for classes,
// [InterfaceMetadata] for interfaces and [TraitMetadata] for traits.
type Node struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Kind  source.DeclarationKind `json:"kind"`
	Meta  Metadata               `json:"metadata"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// UnmarshalJSON decodes a node and selects the metadata variant from its kind.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    string                 `json:"id"`
		Label string                 `json:"label"`
		Kind  source.DeclarationKind `json:"kind"`
		Meta  json.RawMessage        `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	meta, err := decodeMetadata(raw.Kind, raw.Meta)
	if err != nil {
		return fmt.Errorf("node %s: %w", raw.ID, err)
	}
	*n = Node{ID: raw.ID, Label: raw.Label, Kind: raw.Kind, Meta: meta}
	return nil
}

// =============================================================================
// Metadata - Tagged Variant per Declaration Kind
// =============================================================================

// Metadata carries the per-kind facts of a node. The set of implementations
// is closed: ClassMetadata, InterfaceMetadata and TraitMetadata.
type Metadata interface {
	// Common returns the fields shared by every declaration kind.
	Common() CommonMetadata
	isMetadata()
}

// CommonMetadata holds the fields every declaration kind has.
type CommonMetadata struct {
	Namespace  string `json:"namespace"`
	FilePath   string `json:"filePath"`
	DocComment string `json:"docComment,omitempty"`
}

// ClassMetadata is the metadata of a class node.
type ClassMetadata struct {
	CommonMetadata
	IsAbstract bool `json:"isAbstract"`
	IsFinal    bool `json:"isFinal"`
}

// InterfaceMetadata is the metadata of an interface node.
type InterfaceMetadata struct {
	CommonMetadata
}

// TraitMetadata is the metadata of a trait node.
type TraitMetadata struct {
	CommonMetadata
}

func (m ClassMetadata) Common() CommonMetadata     { return m.CommonMetadata }
func (m InterfaceMetadata) Common() CommonMetadata { return m.CommonMetadata }
func (m TraitMetadata) Common() CommonMetadata     { return m.CommonMetadata }

func (ClassMetadata) isMetadata()     {}
func (InterfaceMetadata) isMetadata() {}
func (TraitMetadata) isMetadata()     {}

// NewMetadata returns the metadata variant for kind. The abstract and final
// flags only apply to classes. Unknown kinds carry the common fields as
// TraitMetadata.
func NewMetadata(kind source.DeclarationKind, common CommonMetadata, abstract, final bool) Metadata {
	switch kind {
	case source.KindClass:
		return ClassMetadata{CommonMetadata: common, IsAbstract: abstract, IsFinal: final}
	case source.KindInterface:
		return InterfaceMetadata{CommonMetadata: common}
	default:
		return TraitMetadata{CommonMetadata: common}
	}
}

// IsAbstract reports whether the node is an abstract class.
func (n *Node) IsAbstract() bool {
	m, ok := n.Meta.(ClassMetadata)
	return ok && m.IsAbstract
}

// IsFinal reports whether the node is a final class.
func (n *Node) IsFinal() bool {
	m, ok := n.Meta.(ClassMetadata)
	return ok && m.IsFinal
}

func decodeMetadata(kind source.DeclarationKind, raw json.RawMessage) (Metadata, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "[]" {
		return NewMetadata(kind, CommonMetadata{}, false, false), nil
	}
	switch kind {
	case source.KindClass:
		var m ClassMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("class metadata: %w", err)
		}
		return m, nil
	case source.KindInterface:
		var m InterfaceMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("interface metadata: %w", err)
		}
		return m, nil
	default:
		var m TraitMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		return m, nil
	}
}

// =============================================================================
// Edge - Directed Dependency
// =============================================================================

// Edge is a directed, kind-tagged dependency between two nodes.
// Its ID is "source->target"; the kind is not part of the identity.
type Edge struct {
	ID     string                `json:"id"`
	Source string                `json:"source"`
	Target string                `json:"target"`
	Kind   source.DependencyKind `json:"kind"`
	Meta   map[string]any        `json:"metadata"`
}

// EdgeID returns the identity of the edge from source to target.
func EdgeID(source, target string) string {
	return source + "->" + target
}

// MarshalJSON always emits a metadata object, never null.
func (e Edge) MarshalJSON() ([]byte, error) {
	type plain Edge
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	return orderedjson.Raw(plain(e))
}

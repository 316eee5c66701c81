package validate

import (
	"encoding/json"

	"github.com/matzehuels/classgraph/internal/orderedjson"
)

// Report is the result of validating a graph. The JSON field names are
// consumed by the visualization client and must not change.
type Report struct {
	OrphanedNodes        []string    `json:"orphanedNodes"`
	MultipleInheritance  Inheritance `json:"multipleInheritance"`
	CircularDependencies [][]string  `json:"circularDependencies"`
	LongestPaths         [][]string  `json:"longestPaths"`
	MostConnected        Ranking     `json:"mostConnected"`
	LeastConnected       Ranking     `json:"leastConnected"`
	SubgraphCount        int         `json:"subgraphCount"`
	LargestSubgraph      int         `json:"largestSubgraph"`
	SmallestSubgraph     int         `json:"smallestSubgraph"`
	IsValid              bool        `json:"isValid"`
}

// Degree is the connectivity of one node.
type Degree struct {
	In    int `json:"in"`
	Out   int `json:"out"`
	Total int `json:"total"`
}

// Ranked pairs a node with its degree.
type Ranked struct {
	ID string
	Degree
}

// Ranking is an ordered list of nodes, encoded as a JSON object keyed by
// node ID in rank order.
type Ranking []Ranked

// MarshalJSON encodes the ranking as {"<FQN>": {"in", "out", "total"}, ...}.
func (r Ranking) MarshalJSON() ([]byte, error) {
	return orderedjson.Marshal(len(r), func(i int) (string, any) { return r[i].ID, r[i].Degree })
}

// UnmarshalJSON decodes a ranking, keeping document order.
func (r *Ranking) UnmarshalJSON(data []byte) error {
	*r = Ranking{}
	return orderedjson.Walk(data, func(key string, dec *json.Decoder) error {
		var d Degree
		if err := dec.Decode(&d); err != nil {
			return err
		}
		*r = append(*r, Ranked{ID: key, Degree: d})
		return nil
	})
}

// InheritanceCase is a node that extends more than one parent.
type InheritanceCase struct {
	Source  string
	Targets []string
}

// Inheritance lists multiple-inheritance cases, encoded as a JSON object
// {"<FQN>": ["<parent FQN>", ...]} in discovery order.
type Inheritance []InheritanceCase

// MarshalJSON encodes the cases as an ordered object.
func (m Inheritance) MarshalJSON() ([]byte, error) {
	return orderedjson.Marshal(len(m), func(i int) (string, any) { return m[i].Source, m[i].Targets })
}

// UnmarshalJSON decodes cases, keeping document order.
func (m *Inheritance) UnmarshalJSON(data []byte) error {
	*m = Inheritance{}
	return orderedjson.Walk(data, func(key string, dec *json.Decoder) error {
		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return err
		}
		*m = append(*m, InheritanceCase{Source: key, Targets: targets})
		return nil
	})
}

// Problems returns the number of invalidating findings.
func (r *Report) Problems() int {
	return len(r.MultipleInheritance) + len(r.CircularDependencies)
}

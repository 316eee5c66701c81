package build

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/classgraph/internal/orderedjson"
	"github.com/matzehuels/classgraph/pkg/source"
)

// Counter tallies the outcome of every dependency of one kind.
type Counter struct {
	Count    int `json:"count"`
	Missing  int `json:"missing"`
	Invalid  int `json:"invalid"`
	Circular int `json:"circular"`
}

// Seen returns the number of dependencies the counter has recorded.
func (c Counter) Seen() int {
	return c.Count + c.Missing + c.Invalid + c.Circular
}

func (c *Counter) add(o Counter) {
	c.Count += o.Count
	c.Missing += o.Missing
	c.Invalid += o.Invalid
	c.Circular += o.Circular
}

// knownKinds is the closed set of kinds with a dedicated bucket.
var knownKinds = [...]source.DependencyKind{
	source.DepUse,
	source.DepExtends,
	source.DepImplements,
	source.DepUsesTrait,
}

func knownIndex(kind source.DependencyKind) int {
	for i, k := range knownKinds {
		if k == kind {
			return i
		}
	}
	return -1
}

// DependencyStats holds per-kind dependency counters plus a running total.
//
// Known kinds live in fixed buckets; any other kind string gets its own
// bucket in a separate map. A bucket exists only once a dependency of that
// kind has been seen, and kinds are reported in first-seen order.
//
// JSON shape: {"total": {...}, "<kind>": {...}, ...}.
type DependencyStats struct {
	Total Counter

	known [len(knownKinds)]*Counter
	other map[source.DependencyKind]*Counter
	order []source.DependencyKind
}

// bucket returns the counter for kind, creating it on first use.
func (s *DependencyStats) bucket(kind source.DependencyKind) *Counter {
	if i := knownIndex(kind); i >= 0 {
		if s.known[i] == nil {
			s.known[i] = &Counter{}
			s.order = append(s.order, kind)
		}
		return s.known[i]
	}
	if s.other == nil {
		s.other = make(map[source.DependencyKind]*Counter)
	}
	c, ok := s.other[kind]
	if !ok {
		c = &Counter{}
		s.other[kind] = c
		s.order = append(s.order, kind)
	}
	return c
}

func (s *DependencyStats) lookup(kind source.DependencyKind) *Counter {
	if i := knownIndex(kind); i >= 0 {
		return s.known[i]
	}
	return s.other[kind]
}

// Outcome is the fate of a single dependency fact.
type Outcome int

const (
	Added Outcome = iota
	Missing
	Invalid
	Circular
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	case Circular:
		return "circular"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

func (c *Counter) inc(o Outcome) {
	switch o {
	case Added:
		c.Count++
	case Missing:
		c.Missing++
	case Invalid:
		c.Invalid++
	case Circular:
		c.Circular++
	}
}

// totalKey is the JSON key of the running total. Dependencies whose kind is
// spelled the same are counted in the total only.
const totalKey = "total"

// Record counts one dependency of kind with the given outcome.
func (s *DependencyStats) Record(kind source.DependencyKind, o Outcome) {
	if kind != totalKey {
		s.bucket(kind).inc(o)
	}
	s.Total.inc(o)
}

// Merge adds the counters of o into s. Kinds new to s are appended in o's
// first-seen order.
func (s *DependencyStats) Merge(o DependencyStats) {
	for _, kind := range o.order {
		s.bucket(kind).add(*o.lookup(kind))
	}
	s.Total.add(o.Total)
}

// Kind returns the counter for kind and whether any dependency of that kind
// was seen.
func (s *DependencyStats) Kind(kind source.DependencyKind) (Counter, bool) {
	c := s.lookup(kind)
	if c == nil {
		return Counter{}, false
	}
	return *c, true
}

// Kinds returns the kinds seen so far in first-seen order.
func (s *DependencyStats) Kinds() []source.DependencyKind {
	out := make([]source.DependencyKind, len(s.order))
	copy(out, s.order)
	return out
}

// Other returns the counters of kinds outside the known set.
func (s *DependencyStats) Other() map[source.DependencyKind]Counter {
	out := make(map[source.DependencyKind]Counter, len(s.other))
	for k, c := range s.other {
		out[k] = *c
	}
	return out
}

// MarshalJSON writes the total bucket first, then each kind in first-seen
// order.
func (s DependencyStats) MarshalJSON() ([]byte, error) {
	return orderedjson.Marshal(len(s.order)+1, func(i int) (string, any) {
		if i == 0 {
			return totalKey, s.Total
		}
		kind := s.order[i-1]
		return string(kind), *s.lookup(kind)
	})
}

// UnmarshalJSON restores the buckets in document order.
func (s *DependencyStats) UnmarshalJSON(data []byte) error {
	*s = DependencyStats{}
	return orderedjson.Walk(data, func(key string, dec *json.Decoder) error {
		var c Counter
		if err := dec.Decode(&c); err != nil {
			return err
		}
		if key == totalKey {
			s.Total = c
			return nil
		}
		*s.bucket(source.DependencyKind(key)) = c
		return nil
	})
}

// Conflict describes two declarations that share a fully qualified name.
// Only one of them becomes a node.
type Conflict struct {
	FQN         string `json:"fqn"`
	KeptFile    string `json:"keptFile"`
	DroppedFile string `json:"droppedFile"`
}

// Stats summarizes a build.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	BuildTime    time.Duration
	Dependencies DependencyStats

	// Conflicts lists duplicate declarations in input order.
	Conflicts []Conflict

	// Skipped counts declarations without a fully qualified name or with an
	// unknown kind.
	Skipped int
}

type statsJSON struct {
	NodeCount    int             `json:"nodeCount"`
	EdgeCount    int             `json:"edgeCount"`
	BuildTime    float64         `json:"buildTime"`
	Dependencies DependencyStats `json:"dependencies"`
	Conflicts    []Conflict      `json:"conflicts,omitempty"`
	Skipped      int             `json:"skipped,omitempty"`
}

// MarshalJSON encodes the stats with the build time in seconds.
func (s Stats) MarshalJSON() ([]byte, error) {
	return orderedjson.Raw(statsJSON{
		NodeCount:    s.NodeCount,
		EdgeCount:    s.EdgeCount,
		BuildTime:    s.BuildTime.Seconds(),
		Dependencies: s.Dependencies,
		Conflicts:    s.Conflicts,
		Skipped:      s.Skipped,
	})
}

// UnmarshalJSON decodes stats written by MarshalJSON.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var w statsJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Stats{
		NodeCount:    w.NodeCount,
		EdgeCount:    w.EdgeCount,
		BuildTime:    time.Duration(w.BuildTime * float64(time.Second)),
		Dependencies: w.Dependencies,
		Conflicts:    w.Conflicts,
		Skipped:      w.Skipped,
	}
	return nil
}

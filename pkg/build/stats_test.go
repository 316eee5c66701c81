package build

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/classgraph/pkg/source"
)

func TestDependencyStatsBuckets(t *testing.T) {
	var s DependencyStats
	s.Record(source.DepExtends, Added)
	s.Record("mixin", Missing)
	s.Record(source.DepUse, Added)
	s.Record("mixin", Added)
	s.Record(source.DepExtends, Circular)

	want := []source.DependencyKind{source.DepExtends, "mixin", source.DepUse}
	if got := s.Kinds(); !slices.Equal(got, want) {
		t.Errorf("Kinds = %v, want %v", got, want)
	}
	if _, ok := s.Kind(source.DepImplements); ok {
		t.Error("implements bucket created without a dependency")
	}
	other := s.Other()
	if len(other) != 1 || other["mixin"] != (Counter{Count: 1, Missing: 1}) {
		t.Errorf("Other = %+v", other)
	}
	if s.Total != (Counter{Count: 3, Missing: 1, Circular: 1}) {
		t.Errorf("Total = %+v", s.Total)
	}
	if s.Total.Seen() != 5 {
		t.Errorf("Seen = %d, want 5", s.Total.Seen())
	}
}

func TestDependencyStatsJSON(t *testing.T) {
	var s DependencyStats
	s.Record(source.DepUse, Missing)
	s.Record(source.DepExtends, Added)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"total":{"count":1,"missing":1,"invalid":0,"circular":0},` +
		`"use":{"count":0,"missing":1,"invalid":0,"circular":0},` +
		`"extends":{"count":1,"missing":0,"invalid":0,"circular":0}}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}

	var back DependencyStats
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !slices.Equal(back.Kinds(), s.Kinds()) || back.Total != s.Total {
		t.Errorf("decoded = %v %+v", back.Kinds(), back.Total)
	}
}

func TestDependencyStatsTotalKind(t *testing.T) {
	var s DependencyStats
	s.Record("total", Missing)
	s.Record(source.DepUse, Missing)
	s.Record(source.DepUse, Missing)

	if got := s.Kinds(); !slices.Equal(got, []source.DependencyKind{source.DepUse}) {
		t.Errorf("Kinds = %v, want [use]", got)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if n := strings.Count(string(data), `"total"`); n != 1 {
		t.Errorf("total key written %d times: %s", n, data)
	}

	var back DependencyStats
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Total.Missing != 3 {
		t.Errorf("decoded total missing = %d, want 3", back.Total.Missing)
	}
}

func TestDependencyStatsMerge(t *testing.T) {
	var a, b DependencyStats
	a.Record(source.DepUse, Added)
	b.Record("custom", Invalid)
	b.Record(source.DepUse, Missing)

	a.Merge(b)
	if got := a.Kinds(); !slices.Equal(got, []source.DependencyKind{source.DepUse, "custom"}) {
		t.Errorf("Kinds = %v", got)
	}
	if use, _ := a.Kind(source.DepUse); use != (Counter{Count: 1, Missing: 1}) {
		t.Errorf("use = %+v", use)
	}
	if a.Total.Seen() != 3 {
		t.Errorf("Total = %+v", a.Total)
	}
}

func TestStatsJSON(t *testing.T) {
	s := Stats{
		NodeCount: 2,
		EdgeCount: 1,
		BuildTime: 250 * time.Millisecond,
	}
	s.Dependencies.Record(source.DepExtends, Added)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"nodeCount", "edgeCount", "buildTime", "dependencies"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
	for _, key := range []string{"conflicts", "skipped"} {
		if _, ok := raw[key]; ok {
			t.Errorf("%q should be omitted when empty", key)
		}
	}

	var back Stats
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal Stats: %v", err)
	}
	if back.BuildTime != s.BuildTime || back.NodeCount != 2 || back.Dependencies.Total.Count != 1 {
		t.Errorf("decoded = %+v", back)
	}
}

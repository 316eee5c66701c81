package orderedjson

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestMarshalKeepsOrder(t *testing.T) {
	keys := []string{"zeta", "A->B", "alpha"}
	data, err := Marshal(len(keys), func(i int) (string, any) { return keys[i], i })
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"zeta":0,"A->B":1,"alpha":2}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(0, nil)
	if err != nil || string(data) != "{}" {
		t.Errorf("Marshal(0) = %s, %v", data, err)
	}
}

func TestWalk(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKeys []string
		wantErr  bool
	}{
		{"Object", `{"b": 1, "a": {"x": [1, 2]}, "c": null}`, []string{"b", "a", "c"}, false},
		{"Null", `null`, nil, false},
		{"EmptyArray", `[]`, nil, false},
		{"NonEmptyArray", `[1]`, nil, true},
		{"Scalar", `"x"`, nil, true},
		{"Truncated", `{"a": 1`, []string{"a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			err := Walk([]byte(tt.input), func(key string, dec *json.Decoder) error {
				keys = append(keys, key)
				var v any
				return dec.Decode(&v)
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Walk error = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(keys, tt.wantKeys) {
				t.Errorf("keys = %v, want %v", keys, tt.wantKeys)
			}
		})
	}
}

// Package orderedjson reads and writes JSON objects whose key order matters.
//
// encoding/json sorts map keys on output and forgets document order on
// input. The graph wire format and the report sections are ID-keyed objects
// that must come out in insertion order, so they are written entry by entry
// and read back with a token walk.
package orderedjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal writes n entries as a JSON object in index order. entry returns
// the key and value of the i-th entry. HTML characters are not escaped.
func Marshal(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		key, value := entry(i)
		k, err := Raw(key)
		if err != nil {
			return nil, err
		}
		v, err := Raw(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Raw encodes v like json.Marshal but without HTML escaping, so keys such as
// "A->B" stay readable.
func Raw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Walk visits the entries of a JSON object in document order. fn receives
// each key with dec positioned at its value and must consume exactly that
// value. null and [] are accepted as empty objects.
func Walk(data []byte, fn func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch tok {
	case nil:
		return nil
	case json.Delim('['):
		if dec.More() {
			return fmt.Errorf("expected object, got non-empty array")
		}
		return nil
	case json.Delim('{'):
	default:
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}

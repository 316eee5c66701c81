package graph

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/classgraph/pkg/errors"
)

// WriteGraph encodes g in the wire format, indented, without HTML escaping
// so namespace separators stay readable.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Export(g)); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadGraph decodes a wire-format graph. Edges whose endpoints are missing
// from the node map are dropped by [Import].
func ReadGraph(r io.Reader) (*Graph, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return Import(d), nil
}

// MarshalGraph returns the bytes WriteGraph would write. Cache keys hash
// them, so equal graphs built in the same order marshal identically.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph is ReadGraph over an in-memory document.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// WriteGraphFile writes g to path through a temporary file in the same
// directory, so an interrupted build never leaves a truncated graph.json.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".graph-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write graph %s", path)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

// ReadGraphFile loads a graph written by WriteGraphFile. A missing file is
// FILE_NOT_FOUND; undecodable content is INVALID_FORMAT.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open graph %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadGraph(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "graph file %s", path)
	}
	return g, nil
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/classgraph/pkg/errors"
)

// DefaultConcurrency is the number of record files read in parallel by
// LoadFiles when no explicit limit is given.
const DefaultConcurrency = 8

// ReadRecords decodes a JSON array of records from r and validates each one.
// Errors name the offending record index.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode records")
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return records, nil
}

// ReadFile reads and validates the records stored in a single JSON file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteRecords encodes records as indented JSON.
func WriteRecords(records []Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExpandPaths turns a list of files and directories into the list of JSON
// record files to load. Directories are walked recursively. The result is
// sorted and free of duplicates.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "stat %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// LoadFiles reads the given record files in parallel (at most concurrency at
// a time) and merges the results with Merge. The first error wins; remaining
// reads are abandoned when ctx is cancelled.
//
// A single file is returned in file order, unsorted, so the extractor's own
// ordering is what the builder sees.
func LoadFiles(ctx context.Context, paths []string, concurrency int) ([]Record, error) {
	if len(paths) == 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return ReadFile(paths[0])
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	batches := make([][]Record, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs, err := ReadFile(path)
			batches[i] = recs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Merge(batches...), nil
}

// Merge concatenates record batches and sorts them by declaration FQN.
// The sort is stable, so records sharing an FQN keep their batch order and
// the builder's duplicate handling stays deterministic.
func Merge(batches ...[]Record) []Record {
	var n int
	for _, b := range batches {
		n += len(b)
	}
	out := make([]Record, 0, n)
	for _, b := range batches {
		out = append(out, b...)
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return strings.Compare(a.Declaration.FullyQualifiedName, b.Declaration.FullyQualifiedName)
	})
	return out
}

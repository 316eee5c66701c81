// Package store persists build snapshots.
//
// A [Snapshot] freezes one pipeline run: the graph in its wire format, the
// build statistics and the validation report. Snapshots are saved under a
// UUID and can be listed, fetched and deleted later, which lets the server
// show graphs built elsewhere (for example in CI).
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per snapshot, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// # Usage
//
//	st, err := store.NewFileStore("")
//	snap := store.NewSnapshot("nightly", result.Graph, result.Stats, result.Report)
//	if err := st.Save(ctx, snap); err != nil {
//	    return err
//	}
//	fmt.Println(snap.ID)
package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/classgraph/pkg/build"
	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// ErrNotFound is returned (wrapped with SNAPSHOT_NOT_FOUND) when a snapshot
// does not exist.
var ErrNotFound = stderrors.New("snapshot not found")

// Snapshot is a saved pipeline result.
type Snapshot struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Graph     graph.Data       `json:"graph"`
	Stats     build.Stats      `json:"stats"`
	Report    *validate.Report `json:"report,omitempty"`
}

// Summary is the listing view of a snapshot.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	NodeCount int       `json:"nodeCount"`
	EdgeCount int       `json:"edgeCount"`
	IsValid   bool      `json:"isValid"`
}

// NewSnapshot captures g with its stats and report. The ID and creation time
// are assigned on Save.
func NewSnapshot(name string, g *graph.Graph, stats build.Stats, report *validate.Report) *Snapshot {
	return &Snapshot{
		Name:   name,
		Graph:  graph.Export(g),
		Stats:  stats,
		Report: report,
	}
}

// Summary returns the listing view of s.
func (s *Snapshot) Summary() Summary {
	return Summary{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		NodeCount: len(s.Graph.Nodes),
		EdgeCount: len(s.Graph.Edges),
		IsValid:   s.Report != nil && s.Report.IsValid,
	}
}

// BuildGraph rebuilds the snapshot's graph.
func (s *Snapshot) BuildGraph() *graph.Graph {
	return graph.Import(s.Graph)
}

// Store persists snapshots.
type Store interface {
	// Save stores s, assigning an ID and creation time if they are unset.
	// Saving an existing ID replaces the snapshot.
	Save(ctx context.Context, s *Snapshot) error

	// Get returns the snapshot with the given ID or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a snapshot. Deleting a missing ID returns an error
	// wrapping ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}

// prepare fills in the ID and creation time before a save.
func prepare(s *Snapshot, now func() time.Time) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	} else if err := errors.ValidateSnapshotID(s.ID); err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now().UTC()
	}
	return nil
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeSnapshotNotFound, ErrNotFound, "snapshot %s", id)
}

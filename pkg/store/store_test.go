package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/classgraph/pkg/build"
	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/validate"
)

func sampleSnapshot(name string) *Snapshot {
	records := []source.Record{
		{
			Declaration: source.Declaration{Name: "User", FullyQualifiedName: "App\\User", Kind: source.KindClass},
			Dependencies: []source.Dependency{
				{SourceFQN: "App\\User", TargetFQN: "App\\Model", Kind: source.DepExtends},
			},
		},
		{Declaration: source.Declaration{Name: "Model", FullyQualifiedName: "App\\Model", Kind: source.KindClass, IsAbstract: true}},
	}
	res := build.Build(records)
	return NewSnapshot(name, res.Graph, res.Stats, validate.Validate(res.Graph))
}

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	first := sampleSnapshot("first")
	first.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if errors.ValidateSnapshotID(first.ID) != nil {
		t.Fatalf("Save assigned invalid id %q", first.ID)
	}

	second := sampleSnapshot("second")
	second.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "first" || !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Get() = %q at %v", got.Name, got.CreatedAt)
	}
	g := got.BuildGraph()
	if !g.HasEdge("App\\User", "App\\Model") {
		t.Error("stored graph lost its edge")
	}
	if n, _ := g.Node("App\\Model"); n == nil || !n.IsAbstract() {
		t.Error("stored graph lost class metadata")
	}
	if got.Stats.EdgeCount != 1 || got.Report == nil || !got.Report.IsValid {
		t.Errorf("stats/report not preserved: %+v %+v", got.Stats, got.Report)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "second" || list[1].Name != "first" {
		t.Fatalf("List() = %+v, want newest first", list)
	}
	if list[0].NodeCount != 2 || list[0].EdgeCount != 1 || !list[0].IsValid {
		t.Errorf("summary = %+v", list[0])
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, first.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, first.ID); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Errorf("second Delete: code = %q", errors.GetCode(err))
	}
	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid id: code = %q", errors.GetCode(err))
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "6f1c3f0e-8d1a-4b7e-9c55-0a3e7d2b4f10.json"), []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("List() = %+v, want empty", list)
	}
}

func TestSaveAssignsCreatedAt(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	snap := sampleSnapshot("")
	if err := s.Save(context.Background(), snap); err != nil {
		t.Fatal(err)
	}
	if !snap.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", snap.CreatedAt, fixed)
	}

	snap.ID = "not-a-uuid"
	if err := s.Save(context.Background(), snap); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save with bad id: %v", err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("CLASSGRAPH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CLASSGRAPH_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	coll := fmt.Sprintf("snapshots_test_%d", time.Now().UnixNano())
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Collection: coll})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()
	testStore(t, s)
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoConfig{})
	if !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeConfig)
	}
}

package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/classgraph/pkg/errors"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string // default "classgraph"
	Collection string // default "snapshots"
}

// MongoStore keeps snapshots in a MongoDB collection.
//
// Summary fields are stored as top-level document fields so List can skip
// the payload. The payload is the snapshot's JSON encoding, which keeps the
// ordered wire format intact.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
	now    func() time.Time
}

type mongoDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	NodeCount int       `bson:"nodeCount"`
	EdgeCount int       `bson:"edgeCount"`
	IsValid   bool      `bson:"isValid"`
	Payload   []byte    `bson:"payload,omitempty"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeConfig, "mongo uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}
	s := NewMongoStoreFromClient(client, cfg.Database, cfg.Collection)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close does not
// disconnect it.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = "classgraph"
	}
	if collection == "" {
		collection = "snapshots"
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
		now:    time.Now,
	}
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := prepare(snap, s.now); err != nil {
		return err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	sum := snap.Summary()
	doc := mongoDoc{
		ID:        sum.ID,
		Name:      sum.Name,
		CreatedAt: sum.CreatedAt,
		NodeCount: sum.NodeCount,
		EdgeCount: sum.EdgeCount,
		IsValid:   sum.IsValid,
		Payload:   payload,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save snapshot %s", doc.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return nil, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find snapshot %s", id)
	}

	var snap Snapshot
	if err := json.Unmarshal(doc.Payload, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse snapshot %s", id)
	}
	return &snap, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"payload": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list snapshots")
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode snapshots")
	}

	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = Summary{
			ID:        d.ID,
			Name:      d.Name,
			CreatedAt: d.CreatedAt,
			NodeCount: d.NodeCount,
			EdgeCount: d.EdgeCount,
			IsValid:   d.IsValid,
		}
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

package solutions

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/synvisio/pkg/errors"
)

// DefaultCollection is the MongoDB collection used by [NewMongoArchive].
const DefaultCollection = "solutions"

// collection is the subset of *mongo.Collection the archive uses.
type collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

// MongoArchive stores one document per dataset, keyed by dataset name.
type MongoArchive struct {
	coll collection
}

// NewMongoArchive creates an archive on db's [DefaultCollection].
func NewMongoArchive(db *mongo.Database) *MongoArchive {
	return &MongoArchive{coll: db.Collection(DefaultCollection)}
}

// snapshotDoc is the stored form of a snapshot.
type snapshotDoc struct {
	ID       string `bson:"_id"`
	Snapshot `bson:",inline"`
}

func (a *MongoArchive) Load(ctx context.Context, dataset string) (*Snapshot, error) {
	var doc snapshotDoc
	err := a.coll.FindOne(ctx, bson.M{"_id": dataset}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load solutions for %s", dataset)
	}
	return &doc.Snapshot, nil
}

func (a *MongoArchive) Store(ctx context.Context, snap *Snapshot) error {
	doc := snapshotDoc{ID: snap.Dataset, Snapshot: *snap}
	_, err := a.coll.ReplaceOne(ctx, bson.M{"_id": snap.Dataset}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store solutions for %s", snap.Dataset)
	}
	return nil
}

var _ Archive = (*MongoArchive)(nil)

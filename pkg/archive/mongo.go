package archive

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/htfab/tt-multiplexer/pkg/errors"
)

const (
	defaultDatabase = "ttlayout"
	collectionName  = "placements"
	connectTimeout  = 10 * time.Second
)

// MongoArchive stores records in the "placements" collection of a MongoDB
// database.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoArchive connects to the server at uri. The database is taken from
// the URI path and defaults to "ttlayout".
func NewMongoArchive(ctx context.Context, uri string) (*MongoArchive, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse mongodb uri")
	}
	db := cs.Database
	if db == "" {
		db = defaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return NewMongoArchiveFromClient(ctx, client, db)
}

// NewMongoArchiveFromClient uses an existing client and makes sure the
// lookup index exists.
func NewMongoArchiveFromClient(ctx context.Context, client *mongo.Client, db string) (*MongoArchive, error) {
	coll := client.Database(db).Collection(collectionName)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "config_hash", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create placements index")
	}
	return &MongoArchive{client: client, coll: coll}, nil
}

func (a *MongoArchive) Save(ctx context.Context, rec *Record) error {
	if _, err := a.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeInvalidInput, "record %s already archived", rec.ID)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert record")
	}
	return nil
}

func (a *MongoArchive) Get(ctx context.Context, id string) (*Record, error) {
	return a.findOne(ctx, bson.D{{Key: "_id", Value: id}}, options.FindOne())
}

func (a *MongoArchive) Latest(ctx context.Context, configHash string) (*Record, error) {
	filter := bson.D{}
	if configHash != "" {
		filter = bson.D{{Key: "config_hash", Value: configHash}}
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return a.findOne(ctx, filter, opts)
}

func (a *MongoArchive) findOne(ctx context.Context, filter bson.D, opts *options.FindOneOptions) (*Record, error) {
	var rec Record
	err := a.coll.FindOne(ctx, filter, opts).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find record")
	}
	return &rec, nil
}

func (a *MongoArchive) Close() error {
	return a.client.Disconnect(context.Background())
}

var _ Archive = (*MongoArchive)(nil)

package sessionstore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures the MongoDB backend. Zero fields fall back to
// the documented defaults.
type MongoOptions struct {
	Host       string // defaults to localhost
	Port       int    // defaults to 27017
	Database   string // defaults to catalyst
	Collection string // defaults to session
	Username   string // optional
	Password   string // optional
}

func (o *MongoOptions) withDefaults() *MongoOptions {
	resolved := *o
	if resolved.Host == "" {
		resolved.Host = "localhost"
	}
	if resolved.Port == 0 {
		resolved.Port = 27017
	}
	if resolved.Database == "" {
		resolved.Database = "catalyst"
	}
	if resolved.Collection == "" {
		resolved.Collection = "session"
	}
	return &resolved
}

// MongoBackend stores each session as one document keyed by _id, with
// session fields as top-level document fields.
type MongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Backend = (*MongoBackend)(nil)

// NewMongoBackend connects and pings eagerly; a backend you get back is
// one that was reachable at construction time.
func NewMongoBackend(ctx context.Context, opts *MongoOptions) (*MongoBackend, error) {
	opts = opts.withDefaults()

	clientOpts := options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%d", opts.Host, opts.Port))
	if opts.Username != "" {
		clientOpts.SetAuth(options.Credential{Username: opts.Username, Password: opts.Password})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging mongodb")
	}

	return &MongoBackend{
		client:     client,
		collection: client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

func (b *MongoBackend) FindProjected(ctx context.Context, sessionID string, fields ...string) (map[string]any, bool, error) {
	findOpts := options.FindOne()
	if len(fields) > 0 {
		projection := bson.M{}
		for _, f := range fields {
			projection[f] = 1
		}
		findOpts.SetProjection(projection)
	}

	var doc bson.M
	err := b.collection.FindOne(ctx, bson.M{"_id": sessionID}, findOpts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	record := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		record[k] = normalizeStored(v)
	}
	return record, true, nil
}

// bson surfaces small integers as int32; the store expects int64.
func normalizeStored(v any) any {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int:
		return int64(n)
	default:
		return v
	}
}

func (b *MongoBackend) SetField(ctx context.Context, sessionID, field string, value any) error {
	_, err := b.collection.UpdateByID(ctx, sessionID,
		bson.M{"$set": bson.M{field: value}},
		options.Update().SetUpsert(true))
	return err
}

func (b *MongoBackend) UnsetField(ctx context.Context, sessionID, field string) error {
	_, err := b.collection.UpdateByID(ctx, sessionID, bson.M{"$unset": bson.M{field: ""}})
	return err
}

func (b *MongoBackend) DeleteRecord(ctx context.Context, sessionID string) error {
	_, err := b.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

func (b *MongoBackend) DeleteExpiredBefore(ctx context.Context, cutoff int64) error {
	_, err := b.collection.DeleteMany(ctx, bson.M{ExpiresField: bson.M{"$lt": cutoff}})
	return err
}

func (b *MongoBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}

func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

package store

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ppiankov/brandlens/internal/model"
)

const (
	rawCollection       = "raw_questions"
	aggregateCollection = "dashboard_output"
)

// collection is the part of *mongo.Collection the store uses
type collection interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

// MongoStore persists records as MongoDB documents
type MongoStore struct {
	client     *mongo.Client
	raw        collection
	aggregates collection
	logger     *log.Logger
}

// NewMongoStore connects to cfg.MongoURI and uses cfg.MongoDatabase
func NewMongoStore(ctx context.Context, cfg model.StoreConfig, logger *log.Logger) (*MongoStore, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	dbName := cfg.MongoDatabase
	if dbName == "" {
		dbName = "brandlens"
	}
	return NewMongoStoreWithClient(client, dbName, logger), nil
}

// NewMongoStoreWithClient wraps an existing client
func NewMongoStoreWithClient(client *mongo.Client, database string, logger *log.Logger) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:     client,
		raw:        db.Collection(rawCollection),
		aggregates: db.Collection(aggregateCollection),
		logger:     logger,
	}
}

// SaveRaw inserts raw records with one InsertMany per batch
func (s *MongoStore) SaveRaw(ctx context.Context, records []RawRecord) (int, error) {
	return writeBatches(ctx, records, s.logger, func(ctx context.Context, batch []RawRecord) error {
		docs := make([]interface{}, 0, len(batch))
		for _, r := range batch {
			docs = append(docs, r)
		}
		if _, err := s.raw.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert raw records: %w", err)
		}
		return nil
	})
}

// SaveAggregate upserts the dashboard row keyed by run ID
func (s *MongoStore) SaveAggregate(ctx context.Context, record AggregateRecord) error {
	_, err := s.aggregates.ReplaceOne(ctx,
		bson.M{"run_id": record.RunID},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return &WriteError{Unwritten: 1, Err: fmt.Errorf("insert aggregate record: %w", err)}
	}
	return nil
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// Package mongodb provides the MongoDB storage collaborator for the record
// engines.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nimburion/docstore/pkg/observability/logger"
	"github.com/nimburion/docstore/pkg/record"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Adapter provides MongoDB connectivity and implements record.Storage.
type Adapter struct {
	client   *mongo.Client
	database string
	logger   logger.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// Config holds MongoDB adapter configuration.
type Config struct {
	URL              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// NewAdapter connects to MongoDB and verifies connectivity with a ping. It
// does not create collections or indexes.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mongodb URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("MongoDB connection established", "database", cfg.Database)
	return &Adapter{
		client:   client,
		database: cfg.Database,
		logger:   log,
		timeout:  cfg.OperationTimeout,
	}, nil
}

func (a *Adapter) Client() *mongo.Client {
	return a.client
}

func (a *Adapter) Database() *mongo.Database {
	return a.client.Database(a.database)
}

func (a *Adapter) Collection(name string) *mongo.Collection {
	return a.Database().Collection(name)
}

func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return fmt.Errorf("mongodb adapter is closed")
	}
	return a.client.Ping(ctx, readpref.Primary())
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Ping(hcCtx); err != nil {
		a.logger.Error("MongoDB health check failed", "error", err)
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}
	return nil
}

// Fetch returns up to limit records matching filter in the given sort order.
func (a *Adapter) Fetch(ctx context.Context, collection string, filter bson.M, sort bson.D, limit int64) ([]record.Record, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := a.Collection(collection).Find(opCtx, orEmptyFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(opCtx)

	var docs []bson.M
	if err := cursor.All(opCtx, &docs); err != nil {
		return nil, err
	}

	records := make([]record.Record, len(docs))
	for i, doc := range docs {
		records[i] = record.Record(doc)
	}
	return records, nil
}

// FetchOne returns the first record matching filter, or nil when no document
// matches.
func (a *Adapter) FetchOne(ctx context.Context, collection string, filter bson.M) (record.Record, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	doc := bson.M{}
	err := a.Collection(collection).FindOne(opCtx, orEmptyFilter(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.Record(doc), nil
}

func (a *Adapter) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	return a.Collection(collection).CountDocuments(opCtx, orEmptyFilter(filter))
}

// Insert persists rec and returns a copy carrying the generated identity.
func (a *Adapter) Insert(ctx context.Context, collection string, rec record.Record) (record.Record, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	result, err := a.Collection(collection).InsertOne(opCtx, bson.M(rec))
	if err != nil {
		return nil, err
	}

	persisted := rec.Clone()
	persisted[record.FieldID] = result.InsertedID
	return persisted, nil
}

// AtomicUpdate applies modification to the single document matching the full
// match image and reports how many documents matched.
func (a *Adapter) AtomicUpdate(ctx context.Context, collection string, match record.Record, modification bson.M) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	result, err := a.Collection(collection).UpdateOne(opCtx, bson.M(match), modification)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// AtomicFindAndRemove removes the document matching idFilter and returns the
// removal count. An id that matches nothing is not an error.
func (a *Adapter) AtomicFindAndRemove(ctx context.Context, collection string, idFilter bson.M) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	err := a.Collection(collection).FindOneAndDelete(opCtx, idFilter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (a *Adapter) RemoveMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	result, err := a.Collection(collection).DeleteMany(opCtx, orEmptyFilter(filter))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (a *Adapter) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// Find with a nil filter is a driver error; normalize to match-all.
func orEmptyFilter(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

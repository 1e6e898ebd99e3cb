// MongoHandler is an slog.Handler that asynchronously stores log records in
// a MongoDB collection, designed for zero impact on the hot request path:
//
//   - Writes are enqueued into a buffered channel (non-blocking).
//   - A single background goroutine drains the channel and performs
//     InsertMany in batches.
//   - If the channel is full the record is dropped; logging must never
//     block application code.
//   - Graceful shutdown: call Close() to flush and disconnect.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// logDocument is the shape written to MongoDB.
type logDocument struct {
	Time  time.Time `bson:"time"`
	Level string    `bson:"level"`
	Msg   string    `bson:"msg"`
	Attrs bson.M    `bson:"attrs,omitempty"`
}

// MongoHandler is a slog.Handler that writes to MongoDB asynchronously.
type MongoHandler struct {
	client *mongo.Client
	col    *mongo.Collection
	queue  chan logDocument
	done   chan struct{}
	attrs  []slog.Attr
}

// NewMongoHandler connects to uri and returns a handler writing to
// db/collection. The caller must eventually call Close().
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "time", Value: -1}},
	})

	h := &MongoHandler{
		client: client,
		col:    col,
		queue:  make(chan logDocument, mongoQueueSize),
		done:   make(chan struct{}),
	}

	go h.drainLoop()
	return h, nil
}

// Enabled reports whether the handler stores records at the given level.
// Everything INFO and above is persisted.
func (h *MongoHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

// Handle enqueues the record. Never blocks; drops when the queue is full.
func (h *MongoHandler) Handle(_ context.Context, rec slog.Record) error {
	attrs := bson.M{}
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	doc := logDocument{
		Time:  rec.Time,
		Level: rec.Level.String(),
		Msg:   rec.Message,
		Attrs: attrs,
	}

	select {
	case h.queue <- doc:
	default:
		// queue full — drop rather than block the request path
	}
	return nil
}

// WithAttrs returns a handler that includes attrs on every record.
func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup is accepted but flattened; Mongo documents stay one level deep.
func (h *MongoHandler) WithGroup(string) slog.Handler { return h }

// Close flushes pending records and disconnects from MongoDB.
func (h *MongoHandler) Close() error {
	close(h.done)

	// Drain whatever is still queued.
	batch := h.collect(len(h.queue))
	h.flush(batch)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.client.Disconnect(ctx)
}

func (h *MongoHandler) drainLoop() {
	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.flush(h.collect(mongoBatchSize))
		case doc := <-h.queue:
			batch := append(h.collect(mongoBatchSize-1), doc)
			h.flush(batch)
		}
	}
}

func (h *MongoHandler) collect(max int) []logDocument {
	var batch []logDocument
	for len(batch) < max {
		select {
		case doc := <-h.queue:
			batch = append(batch, doc)
		default:
			return batch
		}
	}
	return batch
}

func (h *MongoHandler) flush(batch []logDocument) {
	if len(batch) == 0 {
		return
	}

	docs := make([]interface{}, len(batch))
	for i, d := range batch {
		docs[i] = d
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = h.col.InsertMany(ctx, docs)
}

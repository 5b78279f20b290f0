// Package store wraps the two persistence backends: the document store for
// raw text and the time-series store for price ticks.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections in the text data lake.
const (
	CollectionNews   = "news_articles"
	CollectionSocial = "social_posts"
)

const mongoConnectAttempts = 5

// Mongo is the document store holding ingested news and social text.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    zerolog.Logger
	now    func() time.Time
}

// ConnectMongo dials the document store, retrying with the same doubling
// backoff the broker uses: attempt n failing sleeps 2^n seconds, and the
// fifth failure is final.
func ConnectMongo(ctx context.Context, uri, database string, log zerolog.Logger) (*Mongo, error) {
	var lastErr error
	for attempt := 1; attempt <= mongoConnectAttempts; attempt++ {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				log.Info().Str("database", database).Msg("connected document store")
				return &Mongo{
					client: client,
					db:     client.Database(database),
					log:    log,
					now:    time.Now,
				}, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		if attempt < mongoConnectAttempts {
			wait := time.Duration(1<<attempt) * time.Second
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("document store connect failed")
			time.Sleep(wait)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("connect document store after %d attempts: %w", mongoConnectAttempts, lastErr)
}

// Insert writes one document, stamping ingested_at so readers can window
// on arrival time regardless of the upstream timestamp format.
func (m *Mongo) Insert(ctx context.Context, collection string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	fields["ingested_at"] = m.now().Unix()

	if _, err := m.db.Collection(collection).InsertOne(ctx, fields); err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

// TextDoc is the slice of a stored document the sentiment reader needs.
type TextDoc struct {
	Source      string `bson:"source"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	Text        string `bson:"text"`
}

// Recent returns documents ingested at or after since, newest first.
func (m *Mongo) Recent(ctx context.Context, collection string, since time.Time) ([]TextDoc, error) {
	filter := bson.M{"ingested_at": bson.M{"$gte": since.Unix()}}
	opts := options.Find().SetSort(bson.D{{Key: "ingested_at", Value: -1}})

	cursor, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []TextDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return docs, nil
}

// Close disconnects from the document store.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

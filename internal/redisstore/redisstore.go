// Package redisstore keeps documents in Redis. Each collection is a hash of
// id to JSON payload plus a sorted set that records insertion order.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/carteira-service/internal/store"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store is a store.Gateway backed by Redis
type Store struct {
	client *redis.Client
	prefix string
}

var _ store.Gateway = (*Store)(nil)

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewFromClient(client, cfg.Prefix), nil
}

// NewFromClient wraps an existing client
func NewFromClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "carteira"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) docsKey(collection string) string {
	return s.prefix + ":" + collection
}

func (s *Store) orderKey(collection string) string {
	return s.prefix + ":" + collection + ":order"
}

func (s *Store) seqKey() string {
	return s.prefix + ":seq"
}

// Create stores doc under id. Overwriting an existing id keeps its position.
func (s *Store) Create(ctx context.Context, collection, id string, doc store.Document) (string, error) {
	if id == "" {
		id = store.NewID()
	}
	data, err := store.Marshal(doc)
	if err != nil {
		return "", store.Fault("create", collection, err)
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return "", store.Fault("create", collection, fmt.Errorf("failed to allocate sequence: %w", err))
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.docsKey(collection), id, data)
		pipe.ZAddNX(ctx, s.orderKey(collection), redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		return "", store.Fault("create", collection, fmt.Errorf("failed to write document: %w", err))
	}
	return id, nil
}

// Get retrieves a document by id
func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	data, err := s.client.HGet(ctx, s.docsKey(collection), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, store.Fault("get", collection, fmt.Errorf("failed to get document: %w", err))
	}

	doc, err := store.Unmarshal(data, id)
	if err != nil {
		return nil, store.Fault("get", collection, fmt.Errorf("failed to parse document %s: %w", id, err))
	}
	return doc, nil
}

// List returns the documents of a collection in insertion order
func (s *Store) List(ctx context.Context, collection string) ([]store.Document, error) {
	ids, err := s.client.ZRange(ctx, s.orderKey(collection), 0, -1).Result()
	if err != nil {
		return nil, store.Fault("list", collection, fmt.Errorf("failed to read order: %w", err))
	}

	docs := []store.Document{}
	if len(ids) == 0 {
		return docs, nil
	}

	values, err := s.client.HMGet(ctx, s.docsKey(collection), ids...).Result()
	if err != nil {
		return nil, store.Fault("list", collection, fmt.Errorf("failed to read documents: %w", err))
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// order entry without payload, left behind by an interrupted delete
			continue
		}
		doc, err := store.Unmarshal([]byte(raw), ids[i])
		if err != nil {
			return nil, store.Fault("list", collection, fmt.Errorf("failed to parse document %s: %w", ids[i], err))
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Replace overwrites an existing document
func (s *Store) Replace(ctx context.Context, collection, id string, doc store.Document) error {
	data, err := store.Marshal(doc)
	if err != nil {
		return store.Fault("replace", collection, err)
	}

	exists, err := s.client.HExists(ctx, s.docsKey(collection), id).Result()
	if err != nil {
		return store.Fault("replace", collection, fmt.Errorf("failed to check document: %w", err))
	}
	if !exists {
		return fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}

	if err := s.client.HSet(ctx, s.docsKey(collection), id, data).Err(); err != nil {
		return store.Fault("replace", collection, fmt.Errorf("failed to write document: %w", err))
	}
	return nil
}

// Delete removes a document by id
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, s.docsKey(collection), id)
		pipe.ZRem(ctx, s.orderKey(collection), id)
		return nil
	})
	if err != nil {
		return store.Fault("delete", collection, fmt.Errorf("failed to delete document: %w", err))
	}
	if removed.Val() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	return nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return store.Fault("ping", "", err)
	}
	return nil
}

// Close closes the client
func (s *Store) Close() error {
	return s.client.Close()
}

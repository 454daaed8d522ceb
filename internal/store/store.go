// Package store defines the document store contract shared by every backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document id does not exist in a collection
var ErrNotFound = errors.New("document not found")

// Document is a flat mapping of field name to value. Documents read from a
// Gateway always carry their id under the "id" key.
type Document map[string]any

// Gateway is a per-collection document store
type Gateway interface {
	// Create persists doc under id, generating an id when empty. An existing
	// document with the same id is overwritten.
	Create(ctx context.Context, collection, id string, doc Document) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// List returns documents in insertion order
	List(ctx context.Context, collection string) ([]Document, error)
	// Replace overwrites every field of an existing document
	Replace(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// FieldLister is implemented by gateways that can filter a collection on a
// top-level string field inside the store
type FieldLister interface {
	ListByField(ctx context.Context, collection, field, value string) ([]Document, error)
}

// ListByField returns the documents of collection whose field equals value,
// in insertion order. Gateways without FieldLister are filtered in memory.
func ListByField(ctx context.Context, gw Gateway, collection, field, value string) ([]Document, error) {
	if fl, ok := gw.(FieldLister); ok {
		return fl.ListByField(ctx, collection, field, value)
	}

	docs, err := gw.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := []Document{}
	for _, doc := range docs {
		if v, ok := doc[field].(string); ok && v == value {
			out = append(out, doc)
		}
	}
	return out, nil
}

// FaultError reports that the store was unreachable or rejected an operation
type FaultError struct {
	Op         string
	Collection string
	Err        error
}

func (e *FaultError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s on %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// Fault wraps err as a storage fault
func Fault(op, collection string, err error) error {
	return &FaultError{Op: op, Collection: collection, Err: err}
}

// IsFault reports whether err is (or wraps) a storage fault
func IsFault(err error) bool {
	var fe *FaultError
	return errors.As(err, &fe)
}

// NewID returns a fresh document id
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Encode converts a record into a Document, dropping its id
func Encode(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	delete(doc, "id")
	return doc, nil
}

// Decode converts a Document into a record
func Decode(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// WithID returns a shallow copy of doc carrying id
func WithID(doc Document, id string) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out
}

// Marshal serialises a document for backends that store JSON text. The id
// is not stored inside the payload.
func Marshal(doc Document) ([]byte, error) {
	payload := make(Document, len(doc))
	for k, v := range doc {
		if k != "id" {
			payload[k] = v
		}
	}
	return json.Marshal(payload)
}

// Unmarshal parses a JSON payload and attaches id
func Unmarshal(data []byte, id string) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	doc["id"] = id
	return doc, nil
}

// Package repository binds a store.Gateway collection to a typed record.
package repository

import (
	"context"
	"fmt"

	"github.com/trogers1052/carteira-service/internal/models"
	"github.com/trogers1052/carteira-service/internal/store"
)

// Collection names
const (
	CollectionPassivos  = "passivos"
	CollectionRendaFixa = "renda_fixa_positions"
	CollectionPositions = "renda_variavel_positions"
	CollectionTrades    = "renda_variavel_trades"
	CollectionProventos = "renda_variavel_proventos"
)

// Record is a type that can be validated after hydration
type Record interface {
	Validate() error
}

// Repository persists records of type T in one collection
type Repository[T Record] struct {
	gw         store.Gateway
	collection string
	getID      func(*T) string
	setID      func(*T, string)
}

// New creates a repository. getID and setID expose the record's id field.
func New[T Record](gw store.Gateway, collection string, getID func(*T) string, setID func(*T, string)) *Repository[T] {
	return &Repository[T]{
		gw:         gw,
		collection: collection,
		getID:      getID,
		setID:      setID,
	}
}

// Collection returns the bound collection name
func (r *Repository[T]) Collection() string {
	return r.collection
}

// Create validates and persists rec, using its id when set
func (r *Repository[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	doc, err := store.Encode(rec)
	if err != nil {
		return zero, err
	}

	id, err := r.gw.Create(ctx, r.collection, r.getID(&rec), doc)
	if err != nil {
		return zero, fmt.Errorf("failed to create %s: %w", r.collection, err)
	}
	r.setID(&rec, id)
	return rec, nil
}

// Get retrieves and hydrates one record
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := r.gw.Get(ctx, r.collection, id)
	if err != nil {
		return zero, err
	}
	return r.Hydrate(doc)
}

// List hydrates every record. A single invalid document fails the call.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	docs, err := r.gw.List(ctx, r.collection)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := r.Hydrate(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListRaw returns the unvalidated documents
func (r *Repository[T]) ListRaw(ctx context.Context) ([]store.Document, error) {
	return r.gw.List(ctx, r.collection)
}

// ListWhere returns the records whose top-level string field equals value.
// Documents that fail hydration are left out and returned as the second
// result so one bad document cannot hide the rest.
func (r *Repository[T]) ListWhere(ctx context.Context, field, value string) ([]T, []error, error) {
	docs, err := store.ListByField(ctx, r.gw, r.collection, field, value)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list %s by %s: %w", r.collection, field, err)
	}

	out := make([]T, 0, len(docs))
	var skipped []error
	for _, doc := range docs {
		rec, err := r.Hydrate(doc)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

// Update validates rec and replaces every field of an existing record
// except its id
func (r *Repository[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	doc, err := store.Encode(rec)
	if err != nil {
		return zero, err
	}

	if err := r.gw.Replace(ctx, r.collection, id, doc); err != nil {
		return zero, fmt.Errorf("failed to update %s: %w", r.collection, err)
	}
	r.setID(&rec, id)
	return rec, nil
}

// Delete removes a record
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.gw.Delete(ctx, r.collection, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.collection, err)
	}
	return nil
}

// Hydrate decodes and validates one document
func (r *Repository[T]) Hydrate(doc store.Document) (T, error) {
	var rec, zero T
	if err := store.Decode(doc, &rec); err != nil {
		return zero, &HydrationError{Collection: r.collection, ID: docID(doc), Err: err}
	}
	if err := rec.Validate(); err != nil {
		return zero, &HydrationError{Collection: r.collection, ID: docID(doc), Err: err}
	}
	return rec, nil
}

// HydrationError reports a stored document that does not form a valid record
type HydrationError struct {
	Collection string
	ID         string
	Err        error
}

func (e *HydrationError) Error() string {
	return fmt.Sprintf("invalid %s document %s: %v", e.Collection, e.ID, e.Err)
}

func (e *HydrationError) Unwrap() error {
	return e.Err
}

func docID(doc store.Document) string {
	id, _ := doc["id"].(string)
	return id
}

// NewPassivos binds the liabilities collection
func NewPassivos(gw store.Gateway) *Repository[models.Passivo] {
	return New(gw, CollectionPassivos,
		func(p *models.Passivo) string { return p.ID },
		func(p *models.Passivo, id string) { p.ID = id })
}

// NewRendaFixa binds the fixed-income collection
func NewRendaFixa(gw store.Gateway) *Repository[models.RendaFixaPosition] {
	return New(gw, CollectionRendaFixa,
		func(p *models.RendaFixaPosition) string { return p.ID },
		func(p *models.RendaFixaPosition, id string) { p.ID = id })
}

// NewPositions binds the variable-income positions collection
func NewPositions(gw store.Gateway) *Repository[models.Position] {
	return New(gw, CollectionPositions,
		func(p *models.Position) string { return p.ID },
		func(p *models.Position, id string) { p.ID = id })
}

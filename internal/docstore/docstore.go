// Package docstore provides a uniform CRUD, query and change-subscription
// interface over two interchangeable backends: a Postgres-backed remote
// document store and a local single-JSON-file store. The backend is chosen
// once at startup and never switched at runtime.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// OpEqual is the only filter operator guaranteed to filter correctly.
// Other operators are accepted but ignored by both backends.
const OpEqual = "=="

// Filter is a single (field, operator, value) query constraint.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// Query combines a collection with zero or more filters. A document
// matches iff it satisfies every equality filter (plain conjunction).
// No sort order is part of the contract; sorting is the caller's job.
type Query struct {
	Collection string
	Filters    []Filter
}

// C returns a query over a whole collection.
func C(collection string) Query {
	return Query{Collection: collection}
}

// Where returns a copy of q with the given filters appended.
func (q Query) Where(filters ...Filter) Query {
	combined := make([]Filter, 0, len(q.Filters)+len(filters))
	combined = append(combined, q.Filters...)
	combined = append(combined, filters...)
	return Query{Collection: q.Collection, Filters: combined}
}

// Document is one stored record: its identifier plus the raw field map.
type Document struct {
	ID   string
	Data map[string]any
}

// Decode unmarshals the document fields into v via a JSON round trip.
// The document id is injected under the "id" key before decoding.
func (d Document) Decode(v any) error {
	data := make(map[string]any, len(d.Data)+1)
	for k, val := range d.Data {
		data[k] = val
	}
	data["id"] = d.ID

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// Store is the backend-agnostic persistence contract.
//
// Subscribe is the only read primitive in the hot path: the callback is
// invoked immediately with the current matching set, and again after
// every store-wide write (no diffing, the full recomputed result set is
// delivered each time). The returned function tears the subscription
// down. Dump is the full-table snapshot read used by reporting/export.
//
// Create does not inject an owning user id; callers must include it in
// data. Update merges fields into an existing document and is a silent
// no-op when the document is absent, as is Delete.
type Store interface {
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	Update(ctx context.Context, collection string, id string, data map[string]any) error
	Delete(ctx context.Context, collection string, id string) error
	Subscribe(ctx context.Context, q Query, fn func(docs []Document)) (func(), error)
	Dump(ctx context.Context) (map[string][]Document, error)
	Close(ctx context.Context) error
}

// Encode converts a model struct into the field map accepted by Create
// and Update, via a JSON round trip. The "id" key is stripped so that
// generated identifiers are never overwritten by a stale copy.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	delete(data, "id")
	return data, nil
}

// GetOnce runs q and returns the current matching set. It is built on
// Subscribe, which fires synchronously with the initial snapshot.
func GetOnce(ctx context.Context, s Store, q Query) ([]Document, error) {
	ch := make(chan []Document, 1)
	var once sync.Once

	cancel, err := s.Subscribe(ctx, q, func(docs []Document) {
		once.Do(func() { ch <- docs })
	})
	if err != nil {
		return nil, err
	}
	defer cancel()

	select {
	case docs := <-ch:
		return docs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DecodeAll decodes every document in docs into a slice of T.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// matches reports whether doc satisfies every equality filter in
// filters. Non-equality operators are skipped: they are accepted by the
// contract but not guaranteed to filter.
func matches(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if f.Op != OpEqual {
			continue
		}
		if !jsonEqual(doc[f.Field], f.Value) {
			return false
		}
	}
	return true
}

// jsonEqual compares two values by their JSON encoding, so that e.g.
// int(3) from a model equals float64(3) decoded from the blob.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// docID extracts the "id" field of a raw document map.
func docID(data map[string]any) string {
	id, _ := data["id"].(string)
	return id
}

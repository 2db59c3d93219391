// Package memory implements an in-memory food repository.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"foodflow/pkg/food"
	"foodflow/pkg/food/pagination"
	"foodflow/pkg/food/query"
	"foodflow/pkg/logger"
)

const storeName = "memory"

type key struct {
	id           string
	partitionKey string
}

// Repository provides an in-memory implementation of food.Repository.
// Documents are returned in insertion order.
type Repository struct {
	mu    sync.RWMutex
	docs  map[key]food.Record
	order []key
	log   *logger.Logger
}

// New creates a new in-memory repository. A nil logger discards output.
func New(log *logger.Logger) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	return &Repository{docs: make(map[key]food.Record), log: log}
}

// List runs q over every stored document.
func (r *Repository) List(ctx context.Context, text string) ([]food.Record, error) {
	start := time.Now()
	q, err := query.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", food.ErrQuery, err)
	}
	docs, err := r.scan(q)
	if err != nil {
		return nil, err
	}
	from, to := q.Window(len(docs))
	out, err := project(q, docs[from:to])
	food.Observe(ctx, r.log, storeName, "list", 0, start)
	return out, err
}

// Get retrieves a record by id and partition key.
func (r *Repository) Get(ctx context.Context, id, partitionKey string) (*food.Record, error) {
	if id == "" {
		return nil, nil
	}
	r.mu.RLock()
	rec, ok := r.docs[key{id, partitionKey}]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	out, err := clone(rec)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Add stores rec under a freshly generated ID.
func (r *Repository) Add(ctx context.Context, rec *food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	rec.ID = uuid.NewString()
	stored, err := clone(*rec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{rec.ID, rec.FoodGroup}
	if _, ok := r.docs[k]; ok {
		return food.NewStoreError("create", http.StatusConflict, errors.New("record already exists"))
	}
	r.docs[k] = stored
	r.order = append(r.order, k)
	return nil
}

// Update replaces or inserts rec.
func (r *Repository) Update(ctx context.Context, rec food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	stored, err := clone(rec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{rec.ID, rec.FoodGroup}
	if _, ok := r.docs[k]; !ok {
		r.order = append(r.order, k)
	}
	r.docs[k] = stored
	return nil
}

// PatchDescription sets the description of an existing record.
func (r *Repository) PatchDescription(ctx context.Context, rec food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{rec.ID, rec.FoodGroup}
	stored, ok := r.docs[k]
	if !ok {
		return food.NewStoreError("patch", http.StatusNotFound, food.ErrNotFound)
	}
	stored.Description = rec.Description
	r.docs[k] = stored
	return nil
}

// Delete removes a record; a missing record is not an error.
func (r *Repository) Delete(ctx context.Context, id, partitionKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{id, partitionKey}
	if _, ok := r.docs[k]; !ok {
		r.log.Debug(ctx, "delete of missing record", "id", id, "partition_key", partitionKey)
		return nil
	}
	delete(r.docs, k)
	for i, o := range r.order {
		if o == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// PageByContinuation serves one fetch-sized page, resuming from the
// request's continuation token when present.
func (r *Repository) PageByContinuation(ctx context.Context, req food.ContinuationPageRequest) (food.PagedResult[food.Record], error) {
	start := time.Now()
	q := query.Select(food.PagingFields...).Filter("foodGroup", req.PartitionKey)
	docs, err := r.scan(q)
	if err != nil {
		return food.PagedResult[food.Record]{}, err
	}
	items, err := project(q, docs)
	if err != nil {
		return food.PagedResult[food.Record]{}, err
	}

	var offset int64
	skip := req.SkipPages
	if req.Continuation != "" {
		if offset, err = pagination.DecodeOffset(req.Continuation); err != nil {
			return food.PagedResult[food.Record]{}, fmt.Errorf("%w: %w", food.ErrQuery, err)
		}
		skip = 0
	}
	feed := pagination.NewSlice(items, req.PageSize, int(offset), func(pos int) string {
		return pagination.EncodeOffset(int64(pos))
	})
	page, err := pagination.SkipPages[food.Record](ctx, feed, skip)
	if err != nil {
		return food.PagedResult[food.Record]{}, err
	}
	food.ObservePage(ctx, r.log, storeName, "page_continuation", 0, page.Fetches, start)
	return food.PagedResult[food.Record]{
		TotalItems:        len(docs),
		Items:             page.Items,
		ContinuationToken: page.Continuation,
	}, nil
}

// PageByOffset serves the rows [Skip, Skip+PageSize).
func (r *Repository) PageByOffset(ctx context.Context, req food.OffsetPageRequest) (food.PagedResult[food.Record], error) {
	start := time.Now()
	q := query.Select(food.PagingFields...).Filter("foodGroup", req.PartitionKey).Page(max(req.Skip, 0), max(req.PageSize, 0))
	docs, err := r.scan(q)
	if err != nil {
		return food.PagedResult[food.Record]{}, err
	}
	from, to := q.Window(len(docs))
	items, err := project(q, docs[from:to])
	if err != nil {
		return food.PagedResult[food.Record]{}, err
	}
	food.Observe(ctx, r.log, storeName, "page_offset", 0, start)
	return food.PagedResult[food.Record]{TotalItems: len(docs), Items: items}, nil
}

// scan returns the decoded documents matching q in store order.
func (r *Repository) scan(q query.Query) ([]map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []map[string]any{}
	for _, k := range r.order {
		doc, err := toDoc(r.docs[k])
		if err != nil {
			return nil, err
		}
		if q.Match(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func project(q query.Query, docs []map[string]any) ([]food.Record, error) {
	out := make([]food.Record, 0, len(docs))
	for _, d := range docs {
		b, err := json.Marshal(q.Project(d))
		if err != nil {
			return nil, err
		}
		var rec food.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func toDoc(rec food.Record) (map[string]any, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	return doc, json.Unmarshal(b, &doc)
}

func clone(rec food.Record) (food.Record, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return food.Record{}, err
	}
	var out food.Record
	return out, json.Unmarshal(b, &out)
}

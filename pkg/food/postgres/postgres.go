// Package postgres stores food documents as JSONB rows in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"foodflow/pkg/food"
	"foodflow/pkg/food/pagination"
	"foodflow/pkg/food/query"
	"foodflow/pkg/logger"
)

const (
	storeName      = "postgres"
	partitionField = "foodGroup"
)

// Repository persists food records in PostgreSQL.
type Repository struct {
	db  *sql.DB
	log *logger.Logger
}

// New creates a PostgreSQL repository.
func New(db *sql.DB, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	return &Repository{db: db, log: log}
}

// Open connects to dsn and creates the foods table when missing.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return New(db, log), nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// List runs a read-only query over every row.
func (r *Repository) List(ctx context.Context, text string) ([]food.Record, error) {
	q, err := query.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", food.ErrQuery, err)
	}
	start := time.Now()
	recs, err := r.selectAll(ctx, q)
	food.Observe(ctx, r.log, storeName, "list", 0, start)
	return recs, err
}

// Get retrieves a record by id and partition key.
func (r *Repository) Get(ctx context.Context, id, partitionKey string) (*food.Record, error) {
	if id == "" {
		return nil, nil
	}
	var doc []byte
	err := r.db.QueryRowContext(ctx, "SELECT doc FROM foods WHERE id = $1 AND food_group = $2", id, partitionKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fault("read", err)
	}
	var rec food.Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, food.NewStoreError("decode", 0, err)
	}
	return &rec, nil
}

// Add inserts rec under a fresh ID.
func (r *Repository) Add(ctx context.Context, rec *food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	rec.ID = uuid.NewString()
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = r.db.ExecContext(ctx, "INSERT INTO foods (id, food_group, doc) VALUES ($1, $2, $3::jsonb)", rec.ID, rec.FoodGroup, string(doc))
	food.Observe(ctx, r.log, storeName, "create", 0, start)
	if err != nil {
		return fault("create", err)
	}
	return nil
}

// Update inserts rec or replaces the stored document.
func (r *Repository) Update(ctx context.Context, rec food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = r.db.ExecContext(ctx, `INSERT INTO foods (id, food_group, doc) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (id, food_group) DO UPDATE SET doc = EXCLUDED.doc`, rec.ID, rec.FoodGroup, string(doc))
	food.Observe(ctx, r.log, storeName, "upsert", 0, start)
	if err != nil {
		return fault("upsert", err)
	}
	return nil
}

// PatchDescription rewrites the description member of an existing document.
func (r *Repository) PatchDescription(ctx context.Context, rec food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	start := time.Now()
	res, err := r.db.ExecContext(ctx, `UPDATE foods SET doc = jsonb_set(doc, '{description}', to_jsonb($3::text))
		WHERE id = $1 AND food_group = $2`, rec.ID, rec.FoodGroup, rec.Description)
	food.Observe(ctx, r.log, storeName, "patch", 0, start)
	if err != nil {
		return fault("patch", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return food.NewStoreError("patch", http.StatusNotFound, food.ErrNotFound)
	}
	return nil
}

// Delete removes a record; a missing row is not an error.
func (r *Repository) Delete(ctx context.Context, id, partitionKey string) error {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, "DELETE FROM foods WHERE id = $1 AND food_group = $2", id, partitionKey)
	food.Observe(ctx, r.log, storeName, "delete", 0, start)
	if err != nil {
		return fault("delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.log.Debug(ctx, "delete of missing record", "id", id, "partition_key", partitionKey)
	}
	return nil
}

// PageByContinuation walks the rows in sequence order with a keyset cursor.
func (r *Repository) PageByContinuation(ctx context.Context, req food.ContinuationPageRequest) (food.PagedResult[food.Record], error) {
	start := time.Now()
	result := food.PagedResult[food.Record]{Items: []food.Record{}}
	q := query.Select(food.PagingFields...).Filter(partitionField, req.PartitionKey)

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalItems = total

	feed := &keysetFeed{r: r, q: q, size: req.PageSize}
	skip := req.SkipPages
	if req.Continuation != "" {
		if feed.after, err = pagination.DecodeOffset(req.Continuation); err != nil {
			return result, fmt.Errorf("%w: %w", food.ErrQuery, err)
		}
		skip = 0
	}
	page, err := pagination.SkipPages[food.Record](ctx, feed, skip)
	food.ObservePage(ctx, r.log, storeName, "page_continuation", 0, page.Fetches, start)
	if err != nil {
		return result, err
	}
	result.Items = page.Items
	result.ContinuationToken = page.Continuation
	return result, nil
}

// PageByOffset reads one OFFSET/LIMIT window in sequence order.
func (r *Repository) PageByOffset(ctx context.Context, req food.OffsetPageRequest) (food.PagedResult[food.Record], error) {
	start := time.Now()
	result := food.PagedResult[food.Record]{Items: []food.Record{}}
	q := query.Select(food.PagingFields...).
		Filter(partitionField, req.PartitionKey).
		Page(max(req.Skip, 0), max(req.PageSize, 0))

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalItems = total

	items, err := r.selectAll(ctx, q)
	food.Observe(ctx, r.log, storeName, "page_offset", 0, start)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

func (r *Repository) count(ctx context.Context, q query.Query) (int, error) {
	stmt, args, err := countSQL(q)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", food.ErrQuery, err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fault("count", err)
	}
	return n, nil
}

func (r *Repository) selectAll(ctx context.Context, q query.Query) ([]food.Record, error) {
	stmt, args, err := selectSQL(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", food.ErrQuery, err)
	}
	recs, _, err := r.scan(ctx, q, stmt, args)
	return recs, err
}

// scan runs stmt and returns the projected records and the last sequence
// number read.
func (r *Repository) scan(ctx context.Context, q query.Query, stmt string, args []any) ([]food.Record, int64, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fault("query", err)
	}
	defer rows.Close()

	recs := []food.Record{}
	var last int64
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&last, &doc); err != nil {
			return nil, 0, fault("query", err)
		}
		rec, err := project(q, doc)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fault("query", err)
	}
	return recs, last, nil
}

func project(q query.Query, raw []byte) (food.Record, error) {
	var rec food.Record
	if len(q.Fields) == 0 {
		if err := json.Unmarshal(raw, &rec); err != nil {
			return rec, food.NewStoreError("decode", 0, err)
		}
		return rec, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return rec, food.NewStoreError("decode", 0, err)
	}
	b, err := json.Marshal(q.Project(doc))
	if err != nil {
		return rec, err
	}
	return rec, json.Unmarshal(b, &rec)
}

// keysetFeed fetches size rows at a time after the last sequence seen.
type keysetFeed struct {
	r     *Repository
	q     query.Query
	size  int
	after int64
	done  bool
}

func (f *keysetFeed) More() bool { return !f.done }

func (f *keysetFeed) Next(ctx context.Context) (pagination.Batch[food.Record], error) {
	stmt, args, err := keysetSQL(f.q, f.after, f.size)
	if err != nil {
		return pagination.Batch[food.Record]{}, fmt.Errorf("%w: %w", food.ErrQuery, err)
	}
	recs, last, err := f.r.scan(ctx, f.q, stmt, args)
	if err != nil {
		return pagination.Batch[food.Record]{}, err
	}
	if len(recs) > 0 {
		f.after = last
	}
	b := pagination.Batch[food.Record]{Items: recs}
	if f.size <= 0 || len(recs) < f.size {
		f.done = true
	} else {
		b.Continuation = pagination.EncodeOffset(f.after)
	}
	return b, nil
}

// fault maps driver errors onto store errors.
func fault(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return food.NewStoreError(op, http.StatusConflict, err)
		case pqErr.Code.Class() == "22", pqErr.Code.Class() == "42":
			return food.NewStoreError(op, http.StatusBadRequest, err)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return food.NewStoreError(op, 0, err)
}

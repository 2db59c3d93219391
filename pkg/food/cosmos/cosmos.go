// Package cosmos implements the food repository on Azure Cosmos DB.
package cosmos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"foodflow/pkg/food"
	"foodflow/pkg/food/pagination"
	"foodflow/pkg/food/query"
	"foodflow/pkg/logger"
)

const (
	storeName = "cosmos"

	// PartitionField is the document field backing the partition key path.
	PartitionField = "foodGroup"
	// PartitionPath is the container's partition key path.
	PartitionPath = "/" + PartitionField
)

type patchOp struct {
	op    string
	path  string
	value any
}

// container is the subset of the Cosmos container API the repository uses.
// An empty partition key means a cross-partition query.
type container interface {
	read(ctx context.Context, partitionKey, id string) ([]byte, float64, error)
	create(ctx context.Context, partitionKey string, doc []byte) (float64, error)
	upsert(ctx context.Context, partitionKey string, doc []byte) (float64, error)
	patch(ctx context.Context, partitionKey, id string, ops []patchOp) (float64, error)
	remove(ctx context.Context, partitionKey, id string) (float64, error)
	query(q query.Query, partitionKey string, pageSize int, continuation string) pagination.Feed[[]byte]
}

// Repository persists food records in a Cosmos DB container.
type Repository struct {
	c   container
	log *logger.Logger
}

func newRepository(c container, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	return &Repository{c: c, log: log}
}

// List runs a read-only query against the container. Queries that filter on
// the partition field are routed to that partition; everything else fans
// out across partitions.
func (r *Repository) List(ctx context.Context, text string) ([]food.Record, error) {
	q, err := query.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", food.ErrQuery, err)
	}
	start := time.Now()
	recs, charge, err := r.run(ctx, q, partitionOf(q))
	food.Observe(ctx, r.log, storeName, "list", charge, start)
	return recs, err
}

// Get point-reads a record. A missing record yields nil, nil.
func (r *Repository) Get(ctx context.Context, id, partitionKey string) (*food.Record, error) {
	if id == "" {
		return nil, nil
	}
	start := time.Now()
	doc, charge, err := r.c.read(ctx, partitionKey, id)
	food.Observe(ctx, r.log, storeName, "read", charge, start)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, r.fault("read", err)
	}
	var rec food.Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, food.NewStoreError("decode", 0, err)
	}
	return &rec, nil
}

// Add creates rec under a fresh ID.
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
	charge, err := r.c.create(ctx, rec.FoodGroup, doc)
	food.Observe(ctx, r.log, storeName, "create", charge, start)
	if err != nil {
		return r.fault("create", err)
	}
	return nil
}

// Update upserts rec; the last write wins.
func (r *Repository) Update(ctx context.Context, rec food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	start := time.Now()
	r.log.Debug(ctx, "upsert", "id", rec.ID, "partition_key", rec.FoodGroup)
	charge, err := r.c.upsert(ctx, rec.FoodGroup, doc)
	food.Observe(ctx, r.log, storeName, "upsert", charge, start)
	if err != nil {
		return r.fault("upsert", err)
	}
	return nil
}

// PatchDescription sets /description on an existing document.
func (r *Repository) PatchDescription(ctx context.Context, rec food.Record) error {
	if rec.FoodGroup == "" {
		return food.ErrMissingPartitionKey
	}
	start := time.Now()
	charge, err := r.c.patch(ctx, rec.FoodGroup, rec.ID, []patchOp{
		{op: "set", path: "/description", value: rec.Description},
	})
	food.Observe(ctx, r.log, storeName, "patch", charge, start)
	if err != nil {
		return r.fault("patch", err)
	}
	return nil
}

// Delete removes a document. Not-found counts as success; every other
// failure is returned.
func (r *Repository) Delete(ctx context.Context, id, partitionKey string) error {
	start := time.Now()
	charge, err := r.c.remove(ctx, partitionKey, id)
	food.Observe(ctx, r.log, storeName, "delete", charge, start)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			r.log.Debug(ctx, "delete of missing record", "id", id, "partition_key", partitionKey)
			return nil
		}
		return r.fault("delete", err)
	}
	return nil
}

// PageByContinuation counts the matching documents, then opens a feed capped
// at PageSize items per fetch and returns the first non-empty fetch after
// skipping SkipPages of them. A continuation token resumes a previous feed.
func (r *Repository) PageByContinuation(ctx context.Context, req food.ContinuationPageRequest) (food.PagedResult[food.Record], error) {
	start := time.Now()
	result := food.PagedResult[food.Record]{Items: []food.Record{}}

	total, charge, err := r.count(ctx, req.PartitionKey)
	if err != nil {
		return result, err
	}
	result.TotalItems = total

	q := query.Select(food.PagingFields...).Filter(PartitionField, req.PartitionKey)
	feed := r.c.query(q, req.PartitionKey, req.PageSize, req.Continuation)
	skip := req.SkipPages
	if req.Continuation != "" {
		skip = 0
	}
	page, err := pagination.SkipPages(ctx, feed, skip)
	charge += page.Charge
	food.ObservePage(ctx, r.log, storeName, "page_continuation", charge, page.Fetches, start)
	if err != nil {
		return result, r.fault("query", err)
	}
	if result.Items, err = decode(page.Items); err != nil {
		return result, err
	}
	result.ContinuationToken = page.Continuation
	return result, nil
}

// PageByOffset counts the matching documents and reads one OFFSET/LIMIT
// window of them.
func (r *Repository) PageByOffset(ctx context.Context, req food.OffsetPageRequest) (food.PagedResult[food.Record], error) {
	start := time.Now()
	result := food.PagedResult[food.Record]{Items: []food.Record{}}

	total, charge, err := r.count(ctx, req.PartitionKey)
	if err != nil {
		return result, err
	}
	result.TotalItems = total

	q := query.Select(food.PagingFields...).
		Filter(PartitionField, req.PartitionKey).
		Page(max(req.Skip, 0), max(req.PageSize, 0))
	items, pageCharge, err := r.run(ctx, q, req.PartitionKey)
	food.Observe(ctx, r.log, storeName, "page_offset", charge+pageCharge, start)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// run drains q. The gateway cannot serve OFFSET/LIMIT across partitions, so
// for cross-partition queries the window is applied while draining.
func (r *Repository) run(ctx context.Context, q query.Query, partitionKey string) ([]food.Record, float64, error) {
	window := q
	if partitionKey == "" {
		q = q.Unpaged()
	}
	clientSide := partitionKey == "" && window.Paged

	var (
		charge  float64
		skipped int
		raw     [][]byte
	)
	feed := r.c.query(q, partitionKey, 0, "")
	for feed.More() {
		if clientSide && len(raw) >= window.Limit {
			break
		}
		batch, err := feed.Next(ctx)
		charge += batch.Charge
		if err != nil {
			return nil, charge, r.fault("query", err)
		}
		for _, item := range batch.Items {
			if clientSide {
				if skipped < window.Offset {
					skipped++
					continue
				}
				if len(raw) >= window.Limit {
					break
				}
			}
			raw = append(raw, item)
		}
	}
	recs, err := decode(raw)
	return recs, charge, err
}

// count returns the number of documents in a partition, or in the whole
// container when partitionKey is empty. The gateway rejects aggregates that
// span partitions, so the cross-partition total is counted from an id-only
// projection instead of COUNT(1).
func (r *Repository) count(ctx context.Context, partitionKey string) (int, float64, error) {
	if partitionKey == "" {
		res, err := pagination.Drain(ctx, r.c.query(query.Select("id"), "", 0, ""))
		if err != nil {
			return 0, res.Charge, r.fault("count", err)
		}
		return len(res.Items), res.Charge, nil
	}

	q := query.CountOf(query.All().Filter(PartitionField, partitionKey))
	res, err := pagination.Drain(ctx, r.c.query(q, partitionKey, 0, ""))
	if err != nil {
		return 0, res.Charge, r.fault("count", err)
	}
	total := 0
	for _, item := range res.Items {
		var n int
		if err := json.Unmarshal(item, &n); err != nil {
			return 0, res.Charge, food.NewStoreError("count", 0, err)
		}
		total += n
	}
	return total, res.Charge, nil
}

func (r *Repository) fault(op string, err error) error {
	status := statusOf(err)
	if status == 0 && errors.Is(err, context.Canceled) {
		return err
	}
	return food.NewStoreError(op, status, err)
}

func partitionOf(q query.Query) string {
	for _, c := range q.Where {
		if s, ok := c.Value.(string); ok && c.Field == PartitionField {
			return s
		}
	}
	return ""
}

func decode(items [][]byte) ([]food.Record, error) {
	out := make([]food.Record, 0, len(items))
	for _, item := range items {
		var rec food.Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, food.NewStoreError("decode", 0, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

package food

import "context"

// Record is one food item document. FoodGroup doubles as the partition key.
type Record struct {
	ID          string     `json:"id" yaml:"id"`
	Description string     `json:"description" yaml:"description"`
	FoodGroup   string     `json:"foodGroup" yaml:"foodGroup"`
	Version     int        `json:"version" yaml:"version"`
	Tags        []Tag      `json:"tags" yaml:"tags"`
	Nutrients   []Nutrient `json:"nutrients" yaml:"nutrients"`
	Servings    []Serving  `json:"servings" yaml:"servings"`
}

// Tag labels a record.
type Tag struct {
	Name string `json:"name" yaml:"name"`
}

// Nutrient is a single measured nutrient of a record.
type Nutrient struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Value       float64 `json:"value" yaml:"value"`
	Units       string  `json:"units" yaml:"units"`
}

// Serving describes a portion size.
type Serving struct {
	Amount        float64 `json:"amount" yaml:"amount"`
	Description   string  `json:"description" yaml:"description"`
	WeightInGrams float64 `json:"weightInGrams" yaml:"weightInGrams"`
}

// PagedResult is one page of a query plus the count of all matching items.
type PagedResult[T any] struct {
	TotalItems        int    `json:"totalItems"`
	Items             []T    `json:"items"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}

// ContinuationPageRequest selects a page by skipping whole store fetches.
// Continuation, when set, resumes a previous feed and SkipPages is ignored.
type ContinuationPageRequest struct {
	PageSize     int
	SkipPages    int
	PartitionKey string
	Continuation string
}

// OffsetPageRequest selects a page with an OFFSET/LIMIT clause.
type OffsetPageRequest struct {
	PageSize     int
	Skip         int
	PartitionKey string
}

// PagingFields is the projection returned by both paging operations.
var PagingFields = []string{"id", "foodGroup", "description"}

// Repository defines behavior for persisting food records.
type Repository interface {
	// List runs a read-only query across all partitions.
	List(ctx context.Context, query string) ([]Record, error)
	// Get returns nil without error when the record does not exist.
	Get(ctx context.Context, id, partitionKey string) (*Record, error)
	// Add assigns a new ID to r before creating it.
	Add(ctx context.Context, r *Record) error
	Update(ctx context.Context, r Record) error
	PatchDescription(ctx context.Context, r Record) error
	// Delete succeeds when the record is already gone.
	Delete(ctx context.Context, id, partitionKey string) error
	PageByContinuation(ctx context.Context, req ContinuationPageRequest) (PagedResult[Record], error)
	PageByOffset(ctx context.Context, req OffsetPageRequest) (PagedResult[Record], error)
}

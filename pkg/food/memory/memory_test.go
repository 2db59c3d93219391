package memory

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/pkg/food"
	"foodflow/pkg/logger"
)

func fruit(desc string) *food.Record {
	return &food.Record{
		Description: desc,
		FoodGroup:   "Fruit",
		Version:     1,
		Tags:        []food.Tag{{Name: "raw"}},
		Nutrients:   []food.Nutrient{{ID: "203", Description: "Protein", Value: 0.26, Units: "g"}},
		Servings:    []food.Serving{{Amount: 1, Description: "medium", WeightInGrams: 182}},
	}
}

func seed(t *testing.T, repo *Repository, group string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rec := fruit(fmt.Sprintf("%s %d", group, i))
		rec.FoodGroup = group
		require.NoError(t, repo.Add(context.Background(), rec))
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)

	rec := fruit("Apple")
	rec.ID = "caller-supplied"
	if err := repo.Add(ctx, rec); err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.ID == "" || rec.ID == "caller-supplied" {
		t.Fatalf("expected generated id, got %q", rec.ID)
	}

	got, err := repo.Get(ctx, rec.ID, "Fruit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Description != "Apple" {
		t.Fatalf("expected Apple, got %+v", got)
	}
	assert.Equal(t, *rec, *got)

	rec.Description = "Green apple"
	rec.Version = 2
	if err := repo.Update(ctx, *rec); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := repo.List(ctx, "SELECT * FROM c")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	assert.Equal(t, 2, list[0].Version)

	if err := repo.Delete(ctx, rec.ID, "Fruit"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = repo.Get(ctx, rec.ID, "Fruit")
	if err != nil || got != nil {
		t.Fatalf("expected absent after delete, got %+v err=%v", got, err)
	}
}

func TestGetMissingIsAbsent(t *testing.T) {
	repo := New(nil)
	seed(t, repo, "Fruit", 1)

	got, err := repo.Get(context.Background(), "missing-id", "Fruit")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.Get(context.Background(), "", "Fruit")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetRequiresMatchingPartition(t *testing.T) {
	repo := New(nil)
	ids := seed(t, repo, "Fruit", 1)

	got, err := repo.Get(context.Background(), ids[0], "Vegetables")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	ids := seed(t, repo, "Fruit", 1)

	got, err := repo.Get(ctx, ids[0], "Fruit")
	require.NoError(t, err)
	got.Tags[0].Name = "mutated"

	again, err := repo.Get(ctx, ids[0], "Fruit")
	require.NoError(t, err)
	assert.Equal(t, "raw", again.Tags[0].Name)
}

func TestWritesRequireFoodGroup(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	rec := fruit("Apple")
	rec.FoodGroup = ""

	assert.ErrorIs(t, repo.Add(ctx, rec), food.ErrMissingPartitionKey)
	assert.ErrorIs(t, repo.Update(ctx, *rec), food.ErrMissingPartitionKey)
	assert.ErrorIs(t, repo.PatchDescription(ctx, *rec), food.ErrMissingPartitionKey)
}

func TestPatchDescription(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	ids := seed(t, repo, "Fruit", 1)

	before, err := repo.Get(ctx, ids[0], "Fruit")
	require.NoError(t, err)

	require.NoError(t, repo.PatchDescription(ctx, food.Record{ID: ids[0], FoodGroup: "Fruit", Description: "new"}))

	after, err := repo.Get(ctx, ids[0], "Fruit")
	require.NoError(t, err)
	assert.Equal(t, "new", after.Description)
	assert.Equal(t, before.Nutrients, after.Nutrients)
	assert.Equal(t, before.Servings, after.Servings)
	assert.Equal(t, before.Tags, after.Tags)
	assert.Equal(t, before.Version, after.Version)
}

func TestPatchDescriptionMissing(t *testing.T) {
	err := New(nil).PatchDescription(context.Background(), food.Record{ID: "nope", FoodGroup: "Fruit", Description: "x"})
	assert.ErrorIs(t, err, food.ErrNotFound)
	assert.ErrorIs(t, err, food.ErrStore)
}

func TestDeleteMissingIsIdempotent(t *testing.T) {
	repo := New(nil)
	assert.NoError(t, repo.Delete(context.Background(), "nope", "Fruit"))
}

func TestListQuery(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	seed(t, repo, "Fruit", 3)
	seed(t, repo, "Vegetables", 2)

	all, err := repo.List(ctx, "SELECT * FROM c offset 0 limit 2")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	veg, err := repo.List(ctx, "SELECT c.id, c.description FROM c WHERE c.foodGroup = 'Vegetables'")
	require.NoError(t, err)
	require.Len(t, veg, 2)
	assert.Equal(t, "Vegetables 0", veg[0].Description)
	assert.Empty(t, veg[0].FoodGroup)
	assert.Nil(t, veg[0].Nutrients)

	_, err = repo.List(ctx, "DELETE FROM c")
	assert.ErrorIs(t, err, food.ErrQuery)
}

func TestListMaxLimit(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	ids := seed(t, repo, "Fruit", 3)

	recs, err := repo.List(ctx, "SELECT * FROM c OFFSET 1 LIMIT 9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, ids[1:], recordIDs(recs))

	recs, err = repo.List(ctx, "SELECT * FROM c OFFSET 9223372036854775807 LIMIT 9223372036854775807")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPageByOffsetHugeWindow(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	seed(t, repo, "Fruit", 3)

	page, err := repo.PageByOffset(ctx, food.OffsetPageRequest{PageSize: math.MaxInt, Skip: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)
	assert.Len(t, page.Items, 1)

	page, err = repo.PageByOffset(ctx, food.OffsetPageRequest{PageSize: 4, Skip: math.MaxInt})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestPageByOffset(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	ids := seed(t, repo, "Fruit", 3)
	seed(t, repo, "Vegetables", 4)

	page, err := repo.PageByOffset(ctx, food.OffsetPageRequest{PageSize: 2, Skip: 0, PartitionKey: "Fruit"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[1].ID)
	assert.Equal(t, "Fruit", page.Items[0].FoodGroup)

	for skip := 0; skip < 10; skip++ {
		for size := 1; size < 5; size++ {
			page, err := repo.PageByOffset(ctx, food.OffsetPageRequest{PageSize: size, Skip: skip})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(page.Items), size)
			assert.Equal(t, 7, page.TotalItems)
		}
	}
}

func TestPageByContinuation(t *testing.T) {
	ctx := context.Background()
	repo := New(nil)
	ids := seed(t, repo, "Fruit", 5)
	seed(t, repo, "Vegetables", 2)

	first, err := repo.PageByContinuation(ctx, food.ContinuationPageRequest{PageSize: 2, PartitionKey: "Fruit"})
	require.NoError(t, err)
	assert.Equal(t, 5, first.TotalItems)
	assert.Equal(t, []string{ids[0], ids[1]}, recordIDs(first.Items))
	require.NotEmpty(t, first.ContinuationToken)

	second, err := repo.PageByContinuation(ctx, food.ContinuationPageRequest{PageSize: 2, SkipPages: 1, PartitionKey: "Fruit"})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[3]}, recordIDs(second.Items))

	resumed, err := repo.PageByContinuation(ctx, food.ContinuationPageRequest{PageSize: 2, SkipPages: 9, PartitionKey: "Fruit", Continuation: first.ContinuationToken})
	require.NoError(t, err)
	assert.Equal(t, second.Items, resumed.Items)

	last, err := repo.PageByContinuation(ctx, food.ContinuationPageRequest{PageSize: 2, SkipPages: 2, PartitionKey: "Fruit"})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[4]}, recordIDs(last.Items))
	assert.Empty(t, last.ContinuationToken)

	beyond, err := repo.PageByContinuation(ctx, food.ContinuationPageRequest{PageSize: 2, SkipPages: 10})
	require.NoError(t, err)
	assert.Equal(t, 7, beyond.TotalItems)
	assert.Empty(t, beyond.Items)

	_, err = repo.PageByContinuation(ctx, food.ContinuationPageRequest{PageSize: 2, Continuation: "garbage"})
	assert.ErrorIs(t, err, food.ErrQuery)
}

func TestPageByContinuationLogsFetches(t *testing.T) {
	var buf bytes.Buffer
	repo := New(logger.New(&buf, logger.LevelInfo, "test", nil))
	seed(t, repo, "Fruit", 5)

	_, err := repo.PageByContinuation(context.Background(), food.ContinuationPageRequest{PageSize: 2, SkipPages: 1, PartitionKey: "Fruit"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"op":"page_continuation"`)
	assert.Contains(t, buf.String(), `"fetches":2`)
}

func recordIDs(recs []food.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/pkg/config"
	"foodflow/pkg/food"
	"foodflow/pkg/food/memory"
)

func TestOpenMemory(t *testing.T) {
	repo, closeFn, err := Open(context.Background(), config.StoreConfig{Type: config.StoreMemory}, nil)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()

	assert.IsType(t, &memory.Repository{}, repo)

	rec := &food.Record{FoodGroup: "Dairy", Description: "Milk"}
	require.NoError(t, repo.Add(context.Background(), rec))
	got, err := repo.Get(context.Background(), rec.ID, "Dairy")
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Description)
}

func TestOpenUnknown(t *testing.T) {
	_, closeFn, err := Open(context.Background(), config.StoreConfig{Type: "mongo"}, nil)
	require.Error(t, err)
	assert.NoError(t, closeFn())
}

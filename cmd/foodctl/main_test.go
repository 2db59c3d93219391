package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/pkg/api"
	"foodflow/pkg/food"
	"foodflow/pkg/food/memory"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "seed")
	assert.Contains(t, out, "query")
}

func TestSeedMemoryStore(t *testing.T) {
	t.Setenv("FOODFLOW_STORE_TYPE", "memory")

	out, err := execute(t, "seed", filepath.Join("..", "..", "testdata", "foods.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 3 records into memory store")
}

func TestReadFixtureJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foods.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"description":"Milk","foodGroup":"Dairy","nutrients":[{"id":"203","value":3.2}]}]`), 0o600))

	recs, err := readFixture(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Dairy", recs[0].FoodGroup)
	assert.InDelta(t, 3.2, recs[0].Nutrients[0].Value, 1e-9)
}

func TestSeedRejectsBadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: not a list"), 0o600))

	_, err := execute(t, "seed", path)
	require.Error(t, err)
}

func TestRemoteCommands(t *testing.T) {
	repo := memory.New(nil)
	rec := &food.Record{FoodGroup: "Spices", Description: "Cumin"}
	require.NoError(t, repo.Add(context.Background(), rec))
	srv := httptest.NewServer(api.New(api.Options{Repo: repo}).Router())
	defer srv.Close()

	out, err := execute(t, "--api", srv.URL, "get", rec.ID, "Spices")
	require.NoError(t, err)
	var got food.Record
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Cumin", got.Description)

	out, err = execute(t, "--api", srv.URL, "query", "SELECT c.description FROM c WHERE c.foodGroup = 'Spices'")
	require.NoError(t, err)
	assert.Contains(t, out, "Cumin")

	out, err = execute(t, "--api", srv.URL, "page", "--rows", "5")
	require.NoError(t, err)
	var page food.PagedResult[food.Record]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 1, page.TotalItems)

	_, err = execute(t, "--api", srv.URL, "query", "DROP c")
	require.Error(t, err)

	_, err = execute(t, "--api", srv.URL, "delete", rec.ID, "Spices")
	require.NoError(t, err)
	out, err = execute(t, "--api", srv.URL, "list")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccepts(t *testing.T) {
	tests := []struct {
		in     string
		sql    string
		params []Param
	}{
		{"SELECT * FROM c", "SELECT * FROM c", []Param{}},
		{"select * from c offset 0 limit 2", "SELECT * FROM c OFFSET 0 LIMIT 2", []Param{}},
		{
			"SELECT c.id, c.description FROM c WHERE c.foodGroup = 'Fruit'",
			"SELECT c.id, c.description FROM c WHERE c.foodGroup = @p0",
			[]Param{{Name: "@p0", Value: "Fruit"}},
		},
		{
			`SELECT * FROM f WHERE f.version = 2 AND f.foodGroup = "Baked Products" OFFSET 10 LIMIT 5`,
			"SELECT * FROM f WHERE f.version = @p0 AND f.foodGroup = @p1 OFFSET 10 LIMIT 5",
			[]Param{{Name: "@p0", Value: 2.0}, {Name: "@p1", Value: "Baked Products"}},
		},
		{
			`SELECT * FROM c WHERE c.description = 'it\'s' AND c.active = true`,
			"SELECT * FROM c WHERE c.description = @p0 AND c.active = @p1",
			[]Param{{Name: "@p0", Value: "it's"}, {Name: "@p1", Value: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := Parse(tt.in)
			require.NoError(t, err)
			sql, params := q.Render()
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"DELETE FROM c",
		"SELECT * FROM c; DROP TABLE foods",
		"SELECT * FROM c WHERE c.foodGroup = 'Fruit' OR 1 = 1",
		"SELECT * FROM c WHERE x.foodGroup = 'Fruit'",
		"SELECT d.id FROM c",
		"SELECT * FROM c WHERE c.foodGroup = 'unterminated",
		"SELECT * FROM c OFFSET 1",
		"SELECT * FROM c OFFSET -1 LIMIT 2",
		"SELECT * FROM select",
		"SELECT VALUE COUNT(1) FROM c",
		"SELECT * FROM c WHERE c.foodGroup = @p0",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestBuilders(t *testing.T) {
	q := Select("id", "foodGroup", "description").Filter("foodGroup", "Fruit").Page(20, 10)
	sql, params := q.Render()
	assert.Equal(t, "SELECT c.id, c.foodGroup, c.description FROM c WHERE c.foodGroup = @p0 OFFSET 20 LIMIT 10", sql)
	assert.Equal(t, []Param{{Name: "@p0", Value: "Fruit"}}, params)

	sql, _ = CountOf(q).Render()
	assert.Equal(t, "SELECT VALUE COUNT(1) FROM c WHERE c.foodGroup = @p0", sql)

	sql, params = All().Filter("foodGroup", "").Render()
	assert.Equal(t, "SELECT * FROM c", sql)
	assert.Empty(t, params)

	assert.Equal(t, "SELECT c.id, c.foodGroup, c.description FROM c WHERE c.foodGroup = @p0", q.Unpaged().String())
}

func TestMatchAndProject(t *testing.T) {
	doc := map[string]any{
		"id":          "1",
		"foodGroup":   "Fruit",
		"version":     float64(1),
		"description": "Apple",
		"tags":        []any{map[string]any{"name": "red"}},
	}
	q, err := Parse("SELECT c.id, c.description FROM c WHERE c.foodGroup = 'Fruit' AND c.version = 1")
	require.NoError(t, err)
	assert.True(t, q.Match(doc))
	assert.Equal(t, map[string]any{"id": "1", "description": "Apple"}, q.Project(doc))

	q, err = Parse("SELECT * FROM c WHERE c.version = '1'")
	require.NoError(t, err)
	assert.False(t, q.Match(doc))

	q, err = Parse("SELECT * FROM c WHERE c.tags = 'red'")
	require.NoError(t, err)
	assert.False(t, q.Match(doc))
	assert.Equal(t, doc, q.Project(doc))
}

func TestWindow(t *testing.T) {
	start, end := All().Window(5)
	assert.Equal(t, [2]int{0, 5}, [2]int{start, end})
	start, end = All().Page(1, 2).Window(5)
	assert.Equal(t, [2]int{1, 3}, [2]int{start, end})
	start, end = All().Page(4, 10).Window(5)
	assert.Equal(t, [2]int{4, 5}, [2]int{start, end})
	start, end = All().Page(9, 10).Window(5)
	assert.Equal(t, [2]int{5, 5}, [2]int{start, end})
	start, end = All().Page(1, math.MaxInt).Window(3)
	assert.Equal(t, [2]int{1, 3}, [2]int{start, end})
	start, end = All().Page(math.MaxInt, math.MaxInt).Window(3)
	assert.Equal(t, [2]int{3, 3}, [2]int{start, end})
}

func TestWindowFromParsedLimit(t *testing.T) {
	q, err := Parse("SELECT * FROM c OFFSET 1 LIMIT 9223372036854775807")
	require.NoError(t, err)
	start, end := q.Window(3)
	assert.Equal(t, [2]int{1, 3}, [2]int{start, end})
}

// Package query implements the read-only document query dialect accepted by
// the food repositories.
//
// The dialect is a strict subset of the Cosmos DB SQL API:
//
//	SELECT * | c.field[, c.field...] FROM c
//	[WHERE c.field = literal [AND c.field = literal ...]]
//	[OFFSET n LIMIT m]
//
// Parsed queries are rendered back with every literal bound as a parameter,
// so caller text never reaches the store verbatim.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned for text outside the supported dialect.
var ErrInvalid = errors.New("invalid query")

// DefaultAlias is the collection alias used by built queries.
const DefaultAlias = "c"

// Condition is an equality test on a top-level document field.
type Condition struct {
	Field string
	Value any
}

// Query is a parsed or built document query.
type Query struct {
	Alias  string
	Fields []string
	Count  bool
	Where  []Condition
	Paged  bool
	Offset int
	Limit  int
}

// Param is a named query parameter.
type Param struct {
	Name  string
	Value any
}

// All selects every document.
func All() Query {
	return Query{Alias: DefaultAlias}
}

// Select projects the given top-level fields.
func Select(fields ...string) Query {
	q := All()
	q.Fields = append([]string(nil), fields...)
	return q
}

// CountOf returns a query counting the documents q matches.
func CountOf(q Query) Query {
	return Query{Alias: q.Alias, Count: true, Where: append([]Condition(nil), q.Where...)}
}

// Filter adds an equality condition. An empty string value is ignored so
// callers can pass optional partition filters straight through.
func (q Query) Filter(field string, value any) Query {
	if s, ok := value.(string); ok && s == "" {
		return q
	}
	q.Where = append(append([]Condition(nil), q.Where...), Condition{Field: field, Value: value})
	return q
}

// Page restricts the result window.
func (q Query) Page(offset, limit int) Query {
	q.Paged, q.Offset, q.Limit = true, offset, limit
	return q
}

// Unpaged drops the OFFSET/LIMIT clause.
func (q Query) Unpaged() Query {
	q.Paged, q.Offset, q.Limit = false, 0, 0
	return q
}

// Render returns the canonical SQL text and its parameters.
func (q Query) Render() (string, []Param) {
	alias := q.Alias
	if alias == "" {
		alias = DefaultAlias
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	switch {
	case q.Count:
		b.WriteString("VALUE COUNT(1)")
	case len(q.Fields) == 0:
		b.WriteString("*")
	default:
		for i, f := range q.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(alias + "." + f)
		}
	}
	b.WriteString(" FROM " + alias)

	params := make([]Param, 0, len(q.Where))
	for i, c := range q.Where {
		name := fmt.Sprintf("@p%d", i)
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(alias + "." + c.Field + " = " + name)
		params = append(params, Param{Name: name, Value: c.Value})
	}
	if q.Paged && !q.Count {
		fmt.Fprintf(&b, " OFFSET %d LIMIT %d", q.Offset, q.Limit)
	}
	return b.String(), params
}

func (q Query) String() string {
	s, _ := q.Render()
	return s
}

// Match reports whether a decoded document satisfies every condition.
func (q Query) Match(doc map[string]any) bool {
	for _, c := range q.Where {
		if !equal(doc[c.Field], c.Value) {
			return false
		}
	}
	return true
}

// Project keeps only the selected fields of doc.
func (q Query) Project(doc map[string]any) map[string]any {
	if len(q.Fields) == 0 {
		return doc
	}
	out := make(map[string]any, len(q.Fields))
	for _, f := range q.Fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Window clamps the OFFSET/LIMIT clause to a result of n items.
func (q Query) Window(n int) (start, end int) {
	if !q.Paged {
		return 0, n
	}
	start = min(max(q.Offset, 0), n)
	end = start + min(max(q.Limit, 0), n-start)
	return start, end
}

func equal(docValue, want any) bool {
	switch w := want.(type) {
	case float64:
		return toFloat(docValue) == w && isNumber(docValue)
	case int:
		return toFloat(docValue) == float64(w) && isNumber(docValue)
	default:
		return docValue == want
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

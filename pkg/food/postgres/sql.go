package postgres

import (
	"encoding/json"
	"strconv"
	"strings"

	"foodflow/pkg/food/query"
)

const schema = `CREATE TABLE IF NOT EXISTS foods (
	seq BIGSERIAL NOT NULL UNIQUE,
	id TEXT NOT NULL,
	food_group TEXT NOT NULL,
	doc JSONB NOT NULL,
	PRIMARY KEY (id, food_group)
)`

// builder accumulates a WHERE clause with positional arguments.
type builder struct {
	where []string
	args  []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) clause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

// conditions translates equality tests into SQL. The partition field maps to
// its own column; every other field compares the JSONB member, with both the
// member name and the value bound as arguments.
func conditions(q query.Query) (*builder, error) {
	b := &builder{}
	for _, c := range q.Where {
		if s, ok := c.Value.(string); ok && c.Field == partitionField {
			b.where = append(b.where, "food_group = "+b.arg(s))
			continue
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		b.where = append(b.where, "doc -> "+b.arg(c.Field)+" = "+b.arg(string(v))+"::jsonb")
	}
	return b, nil
}

// selectSQL renders q in store order, honoring OFFSET/LIMIT.
func selectSQL(q query.Query) (string, []any, error) {
	b, err := conditions(q)
	if err != nil {
		return "", nil, err
	}
	s := "SELECT seq, doc FROM foods" + b.clause() + " ORDER BY seq"
	if q.Paged {
		s += " OFFSET " + b.arg(q.Offset) + " LIMIT " + b.arg(q.Limit)
	}
	return s, b.args, nil
}

func countSQL(q query.Query) (string, []any, error) {
	b, err := conditions(q)
	if err != nil {
		return "", nil, err
	}
	return "SELECT count(*) FROM foods" + b.clause(), b.args, nil
}

// keysetSQL renders one fetch of q after the given sequence number.
func keysetSQL(q query.Query, after int64, size int) (string, []any, error) {
	b, err := conditions(q)
	if err != nil {
		return "", nil, err
	}
	b.where = append(b.where, "seq > "+b.arg(after))
	s := "SELECT seq, doc FROM foods" + b.clause() + " ORDER BY seq"
	if size > 0 {
		s += " LIMIT " + b.arg(size)
	}
	return s, b.args, nil
}

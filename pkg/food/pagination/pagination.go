// Package pagination walks cursor-based store feeds one fetch at a time.
package pagination

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Batch is the result of one store fetch.
type Batch[T any] struct {
	Items []T
	// Continuation resumes the feed after this batch; empty when drained.
	Continuation string
	// Charge is the store cost of the fetch.
	Charge float64
}

// Feed is a cursor over a query whose fetches are capped at a page size.
type Feed[T any] interface {
	More() bool
	Next(ctx context.Context) (Batch[T], error)
}

// Result is the page selected by SkipPages.
type Result[T any] struct {
	Items        []T
	Continuation string
	Charge       float64
	// Fetches counts the batches read, empty ones included.
	Fetches int
}

// SkipPages discards the first skip non-empty batches of feed and returns the
// next non-empty one. Past the end of the feed the result has no items.
func SkipPages[T any](ctx context.Context, feed Feed[T], skip int) (Result[T], error) {
	res := Result[T]{Items: []T{}}
	for feed.More() {
		batch, err := feed.Next(ctx)
		if err != nil {
			return res, err
		}
		res.Fetches++
		res.Charge += batch.Charge
		if len(batch.Items) == 0 {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		res.Items = append(res.Items, batch.Items...)
		res.Continuation = batch.Continuation
		break
	}
	return res, nil
}

// Drain reads every remaining batch of feed.
func Drain[T any](ctx context.Context, feed Feed[T]) (Result[T], error) {
	res := Result[T]{Items: []T{}}
	for feed.More() {
		batch, err := feed.Next(ctx)
		if err != nil {
			return res, err
		}
		res.Fetches++
		res.Charge += batch.Charge
		res.Items = append(res.Items, batch.Items...)
	}
	return res, nil
}

// PageNumber normalizes a 1-based page number.
func PageNumber(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// SkipCount is the number of rows before the given 1-based page. It
// saturates at math.MaxInt instead of wrapping.
func SkipCount(page, size int) int {
	pages := PageNumber(page) - 1
	if size <= 0 || pages == 0 {
		return 0
	}
	if pages > math.MaxInt/size {
		return math.MaxInt
	}
	return pages * size
}

// Slice is an in-memory Feed that serves items in fetches of size rows and
// reports the offset of the next fetch as its continuation.
type Slice[T any] struct {
	items  []T
	size   int
	offset int
	encode func(offset int) string
}

// NewSlice returns a feed over items starting at offset. encode turns the
// next offset into a continuation token.
func NewSlice[T any](items []T, size, offset int, encode func(int) string) *Slice[T] {
	if size <= 0 {
		size = len(items)
	}
	return &Slice[T]{items: items, size: size, offset: offset, encode: encode}
}

func (s *Slice[T]) More() bool { return s.offset < len(s.items) }

func (s *Slice[T]) Next(context.Context) (Batch[T], error) {
	end := s.offset + min(s.size, len(s.items)-s.offset)
	b := Batch[T]{Items: s.items[s.offset:end]}
	s.offset = end
	if s.offset < len(s.items) && s.encode != nil {
		b.Continuation = s.encode(s.offset)
	}
	return b, nil
}

// ErrBadToken is returned for continuation tokens this package did not issue.
var ErrBadToken = errors.New("malformed continuation token")

const tokenPrefix = "o:"

// EncodeOffset turns a feed position into an opaque continuation token.
func EncodeOffset(pos int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(tokenPrefix + strconv.FormatInt(pos, 10)))
}

// DecodeOffset reverses EncodeOffset.
func DecodeOffset(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || !strings.HasPrefix(string(raw), tokenPrefix) {
		return 0, ErrBadToken
	}
	pos, err := strconv.ParseInt(strings.TrimPrefix(string(raw), tokenPrefix), 10, 64)
	if err != nil || pos < 0 {
		return 0, ErrBadToken
	}
	return pos, nil
}

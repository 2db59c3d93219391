package pagination

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays fixed batches.
type scripted struct {
	batches []Batch[int]
	err     error
	calls   int
}

func (s *scripted) More() bool { return s.calls < len(s.batches) }

func (s *scripted) Next(context.Context) (Batch[int], error) {
	if s.err != nil {
		return Batch[int]{}, s.err
	}
	b := s.batches[s.calls]
	s.calls++
	return b, nil
}

func pages() *scripted {
	return &scripted{batches: []Batch[int]{
		{Items: []int{1, 2}, Continuation: "t1", Charge: 1.5},
		{Items: []int{3, 4}, Continuation: "t2", Charge: 1.5},
		{Items: []int{5}, Charge: 1},
	}}
}

func TestSkipPages(t *testing.T) {
	ctx := context.Background()

	res, err := SkipPages[int](ctx, pages(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Items)
	assert.Equal(t, "t1", res.Continuation)
	assert.Equal(t, 1, res.Fetches)

	res, err = SkipPages[int](ctx, pages(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, res.Items)
	assert.Equal(t, "t2", res.Continuation)
	assert.InDelta(t, 3.0, res.Charge, 1e-9)

	res, err = SkipPages[int](ctx, pages(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, res.Items)
	assert.Empty(t, res.Continuation)
}

func TestSkipPagesPastEnd(t *testing.T) {
	feed := pages()
	res, err := SkipPages[int](context.Background(), feed, 7)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 3, feed.calls)
	assert.InDelta(t, 4.0, res.Charge, 1e-9)
}

func TestSkipPagesIgnoresEmptyBatches(t *testing.T) {
	feed := &scripted{batches: []Batch[int]{
		{Continuation: "e1"},
		{Items: []int{1}, Continuation: "t1"},
		{Continuation: "e2"},
		{Items: []int{2}, Continuation: "t2"},
	}}
	res, err := SkipPages[int](context.Background(), feed, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Items)
	assert.Equal(t, "t2", res.Continuation)
	assert.Equal(t, 4, res.Fetches)
}

func TestSkipPagesError(t *testing.T) {
	boom := errors.New("throttled")
	feed := &scripted{batches: []Batch[int]{{Items: []int{1}}}, err: boom}
	_, err := SkipPages[int](context.Background(), feed, 0)
	assert.ErrorIs(t, err, boom)
}

func TestDrain(t *testing.T) {
	res, err := Drain[int](context.Background(), pages())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, res.Items)
	assert.Equal(t, 3, res.Fetches)
}

func TestSliceFeed(t *testing.T) {
	encode := func(off int) string { return strconv.Itoa(off) }
	feed := NewSlice([]string{"a", "b", "c", "d", "e"}, 2, 0, encode)

	res, err := SkipPages[string](context.Background(), feed, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, res.Items)
	assert.Equal(t, "4", res.Continuation)

	resumed := NewSlice([]string{"a", "b", "c", "d", "e"}, 2, 4, encode)
	res, err = SkipPages[string](context.Background(), resumed, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, res.Items)
	assert.Empty(t, res.Continuation)
}

func TestPageMath(t *testing.T) {
	assert.Equal(t, 1, PageNumber(0))
	assert.Equal(t, 1, PageNumber(-3))
	assert.Equal(t, 4, PageNumber(4))
	assert.Equal(t, 0, SkipCount(1, 10))
	assert.Equal(t, 0, SkipCount(-1, 10))
	assert.Equal(t, 20, SkipCount(3, 10))
	assert.Equal(t, 0, SkipCount(3, 0))
	assert.Equal(t, math.MaxInt, SkipCount(3, 1<<62))
	assert.Equal(t, math.MaxInt, SkipCount(2, math.MaxInt))
	assert.Equal(t, math.MaxInt-1, SkipCount(3, math.MaxInt/2))
}

func TestSliceFeedHugeSize(t *testing.T) {
	feed := NewSlice([]string{"a", "b", "c"}, math.MaxInt, 1, nil)
	res, err := Drain[string](context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, res.Items)
}

func TestOffsetTokens(t *testing.T) {
	for _, pos := range []int64{0, 1, 250, 1 << 40} {
		got, err := DecodeOffset(EncodeOffset(pos))
		require.NoError(t, err)
		assert.Equal(t, pos, got)
	}
	for _, bad := range []string{"", "!!", "b2s", EncodeOffset(-1)} {
		_, err := DecodeOffset(bad)
		assert.ErrorIs(t, err, ErrBadToken, bad)
	}
}

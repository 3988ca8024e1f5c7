package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/core/apperror"
)

type row struct {
	ID        int64
	Title     string
	LikeCount int64
	CreatedAt time.Time
}

func (r row) GetID() int64 { return r.ID }

var rowSchema = NewSchema(
	Field{Name: "id", Kind: KindInt},
	Field{Name: "title", Kind: KindString},
	Field{Name: "likeCount", Column: "like_count", Kind: KindInt},
	Field{Name: "createdAt", Column: "created_at", Kind: KindTime},
)

func rowField(r row, field string) any {
	switch field {
	case "id":
		return r.ID
	case "title":
		return r.Title
	case "likeCount":
		return r.LikeCount
	case "createdAt":
		return r.CreatedAt
	}
	return nil
}

type sliceSource struct {
	rows    []row
	findErr error
}

func (s *sliceSource) Find(_ context.Context, d *Descriptor) ([]row, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out, _, err := Select(s.rows, d, rowSchema, rowField)
	return out, err
}

func (s *sliceSource) Count(_ context.Context, d *Descriptor) (int64, error) {
	_, total, err := Select(s.rows, d, rowSchema, rowField)
	return total, err
}

// rows with ids in creation order
func seed(ids ...int64) []row {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]row, len(ids))
	for i, id := range ids {
		out[i] = row{ID: id, Title: fmt.Sprintf("post %d", id), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func ids(rows []row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

const baseURL = "http://localhost:3000/posts"

func TestPaginate_CursorFullPage(t *testing.T) {
	p := NewPaginator[row](nil, &sliceSource{rows: seed(3, 6, 7, 9)}, baseURL)

	res, err := p.Paginate(context.Background(), MustParse("take=4"))
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 6, 7, 9}, ids(res.Data))
	assert.Equal(t, 4, res.Count)
	assert.Nil(t, res.Total)
	require.NotNil(t, res.Cursor)
	require.NotNil(t, res.Cursor.After)
	assert.Equal(t, int64(9), *res.Cursor.After)
	require.NotNil(t, res.Cursor.Next)

	next, err := url.Parse(*res.Cursor.Next)
	require.NoError(t, err)
	assert.Equal(t, "/posts", next.Path)
	q := next.Query()
	assert.Equal(t, "9", q.Get("where__id__more_than"))
	assert.Equal(t, "ASC", q.Get("order__createdAt"))
	assert.Equal(t, "4", q.Get("take"))
}

func TestPaginate_CursorShortPage(t *testing.T) {
	p := NewPaginator[row](nil, &sliceSource{rows: seed(3, 6, 7, 9)}, baseURL)

	res, err := p.Paginate(context.Background(), MustParse("take=5"))
	require.NoError(t, err)

	assert.Equal(t, 4, res.Count)
	require.NotNil(t, res.Cursor)
	assert.Nil(t, res.Cursor.After)
	assert.Nil(t, res.Cursor.Next)
}

func TestPaginate_FollowsNextLink(t *testing.T) {
	p := NewPaginator[row](nil, &sliceSource{rows: seed(1, 2, 3, 4, 5)}, baseURL)

	first, err := p.Paginate(context.Background(), MustParse("take=2&where__title__like=post"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(first.Data))
	require.NotNil(t, first.Cursor.Next)

	next, err := url.Parse(*first.Cursor.Next)
	require.NoError(t, err)
	assert.Equal(t, "take=2&where__title__like=post&order__createdAt=ASC&where__id__more_than=2", next.RawQuery)

	second, err := p.Paginate(context.Background(), MustParse(next.RawQuery))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(second.Data))

	third, err := p.Paginate(context.Background(), MustParse(*nextQuery(t, second)))
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids(third.Data))
	assert.Nil(t, third.Cursor.Next)
}

func TestPaginate_DescendingCursor(t *testing.T) {
	p := NewPaginator[row](nil, &sliceSource{rows: seed(1, 2, 3, 4, 5)}, baseURL)

	res, err := p.Paginate(context.Background(), MustParse("order__createdAt=DESC&take=2&page=9&where__id__more_than=1"))
	require.NoError(t, err)
	// page present means page mode: no cursor
	assert.Nil(t, res.Cursor)

	res, err = p.Paginate(context.Background(), MustParse("order__createdAt=DESC&take=2&where__id__more_than=1"))
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, ids(res.Data))
	require.NotNil(t, res.Cursor.Next)

	next, err := url.Parse(*res.Cursor.Next)
	require.NoError(t, err)
	assert.Equal(t, "order__createdAt=DESC&take=2&where__id__more_than=1&where__id__less_than=4", next.RawQuery)
}

func TestPaginate_KeepsOppositeIDBound(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want [][]int64
	}{
		{"ascending with upper bound", "take=2&where__id__less_than=4", [][]int64{{1, 2}, {3}}},
		{"descending with lower bound", "order__createdAt=DESC&take=2&where__id__more_than=3", [][]int64{{6, 5}, {4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator[row](nil, &sliceSource{rows: seed(1, 2, 3, 4, 5, 6)}, baseURL)

			var pages [][]int64
			raw := tt.raw
			for range 10 {
				res, err := p.Paginate(context.Background(), MustParse(raw))
				require.NoError(t, err)
				pages = append(pages, ids(res.Data))
				if res.Cursor.Next == nil {
					break
				}
				raw = *nextQuery(t, res)
			}
			assert.Equal(t, tt.want, pages)
		})
	}
}

func TestPaginate_LastAddressablePage(t *testing.T) {
	p := NewPaginator[row](nil, &sliceSource{rows: seed(1, 2, 3)}, baseURL)

	res, err := p.Paginate(context.Background(), MustParse(fmt.Sprintf("page=%d&take=20", math.MaxInt/20+1)))
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	require.NotNil(t, res.Total)
	assert.Equal(t, int64(3), *res.Total)
}

func TestPaginate_PageMode(t *testing.T) {
	p := NewPaginator[row](nil, &sliceSource{rows: seed(1, 2, 3, 4, 5)}, baseURL)

	res, err := p.Paginate(context.Background(), MustParse("page=2&take=2"))
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 4}, ids(res.Data))
	assert.Equal(t, 2, res.Count)
	require.NotNil(t, res.Total)
	assert.Equal(t, int64(5), *res.Total)
	assert.Nil(t, res.Cursor)

	res, err = p.Paginate(context.Background(), MustParse("page=4&take=2"))
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.NotNil(t, res.Data)
}

func TestPaginate_SortPrecedence(t *testing.T) {
	rows := seed(1, 2, 3, 4)
	rows[0].LikeCount = 5
	rows[1].LikeCount = 9
	rows[2].LikeCount = 5
	rows[3].LikeCount = 1
	p := NewPaginator[row](nil, &sliceSource{rows: rows}, baseURL)

	res, err := p.Paginate(context.Background(), MustParse("order__likeCount=DESC&order__createdAt=ASC"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 3, 4}, ids(res.Data))

	res, err = p.Paginate(context.Background(), MustParse("order__likeCount=DESC&order__createdAt=DESC"))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1, 4}, ids(res.Data))
}

func TestPaginate_Errors(t *testing.T) {
	p := NewPaginator[row](nil, &sliceSource{rows: seed(1)}, baseURL)

	_, err := p.Paginate(context.Background(), MustParse("where__nope=1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownField))

	_, err = p.Paginate(context.Background(), MustParse("order__nope=ASC"))
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownField))

	_, err = p.Paginate(context.Background(), MustParse("where__id__more_than=abc"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidFilterValue))

	_, err = p.Paginate(context.Background(), MustParse("where__likeCount__like=3"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidFilterValue))

	_, err = p.Paginate(context.Background(), MustParse("take=0"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTake))

	boom := errors.New("boom")
	p = NewPaginator[row](nil, &sliceSource{findErr: boom}, baseURL)
	_, err = p.Paginate(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestSelect_TimeFilter(t *testing.T) {
	rows := seed(1, 2, 3)
	d, err := Compose(MustParse("where__createdAt__more_than=2024-01-01T00:00:30Z"))
	require.NoError(t, err)

	out, total, err := Select(rows, d, rowSchema, rowField)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []int64{2, 3}, ids(out))
}

func nextQuery(t *testing.T, res *Result[row]) *string {
	t.Helper()
	require.NotNil(t, res.Cursor)
	require.NotNil(t, res.Cursor.Next)
	u, err := url.Parse(*res.Cursor.Next)
	require.NoError(t, err)
	return &u.RawQuery
}

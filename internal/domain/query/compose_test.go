package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/core/apperror"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantFilters []Filter
		wantSort    []Sort
		wantLimit   int
		wantOffset  int
		wantMode    Mode
	}{
		{
			name:        "cursor filter with explicit sort and take",
			raw:         "where__id__more_than=5&order__createdAt=DESC&take=10",
			wantFilters: []Filter{{Field: "id", Operator: OpMoreThan, Values: []string{"5"}}},
			wantSort:    []Sort{{Field: "createdAt", Direction: Desc}},
			wantLimit:   10,
			wantMode:    ModeCursor,
		},
		{
			name:       "page mode offset",
			raw:        "page=3&take=10",
			wantSort:   []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit:  10,
			wantOffset: 20,
			wantMode:   ModePage,
		},
		{
			name:      "defaults",
			raw:       "",
			wantSort:  []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit: DefaultTake,
			wantMode:  ModeCursor,
		},
		{
			name:      "first page has no offset",
			raw:       "page=1",
			wantSort:  []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit: DefaultTake,
			wantMode:  ModePage,
		},
		{
			name:        "equality filter",
			raw:         "where__title=hello",
			wantFilters: []Filter{{Field: "title", Operator: OpEqual, Values: []string{"hello"}}},
			wantSort:    []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit:   DefaultTake,
		},
		{
			name: "sort clauses keep wire order",
			raw:  "order__likeCount=DESC&order__createdAt=ASC",
			wantSort: []Sort{
				{Field: "likeCount", Direction: Desc},
				{Field: "createdAt", Direction: Asc},
			},
			wantLimit: DefaultTake,
		},
		{
			name:      "unknown keys are ignored",
			raw:       "foo=bar&whereabouts=x&orderly=1&take=3",
			wantSort:  []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit: 3,
		},
		{
			name:        "between splits values",
			raw:         "where__likeCount__between=3,7",
			wantFilters: []Filter{{Field: "likeCount", Operator: OpBetween, Values: []string{"3", "7"}}},
			wantSort:    []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit:   DefaultTake,
		},
		{
			name:        "single-value operator keeps commas",
			raw:         "where__title__i_like=a,b",
			wantFilters: []Filter{{Field: "title", Operator: OpILike, Values: []string{"a,b"}}},
			wantSort:    []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit:   DefaultTake,
		},
		{
			name: "repeated filters are all kept",
			raw:  "where__id__more_than=1&where__id__less_than=9",
			wantFilters: []Filter{
				{Field: "id", Operator: OpMoreThan, Values: []string{"1"}},
				{Field: "id", Operator: OpLessThan, Values: []string{"9"}},
			},
			wantSort:  []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit: DefaultTake,
		},
		{
			name:      "last take wins",
			raw:       "take=5&take=7",
			wantSort:  []Sort{{Field: "createdAt", Direction: Asc}},
			wantLimit: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Compose(MustParse(tt.raw))
			require.NoError(t, err)

			assert.Equal(t, tt.wantFilters, d.Filters)
			assert.Equal(t, tt.wantSort, d.Sort)
			assert.Equal(t, tt.wantLimit, d.Limit)
			assert.Equal(t, tt.wantOffset, d.Offset)
			assert.Equal(t, tt.wantMode, d.Mode())
		})
	}
}

func TestCompose_Errors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode string
	}{
		{"unknown operator", "where__title__zzz=x", apperror.CodeUnknownOperator},
		{"too many segments", "where__a__b__c=1", apperror.CodeInvalidFilterKey},
		{"empty field", "where__=1", apperror.CodeInvalidFilterKey},
		{"empty operator", "where__id__=1", apperror.CodeInvalidFilterKey},
		{"order with operator", "order__createdAt__more_than=ASC", apperror.CodeInvalidFilterKey},
		{"bad direction", "order__createdAt=UP", apperror.CodeInvalidSortDirection},
		{"lowercase direction", "order__createdAt=asc", apperror.CodeInvalidSortDirection},
		{"zero take", "take=0", apperror.CodeInvalidTake},
		{"negative take", "take=-2", apperror.CodeInvalidTake},
		{"text take", "take=abc", apperror.CodeInvalidTake},
		{"zero page", "page=0", apperror.CodeInvalidPage},
		{"text page", "page=two", apperror.CodeInvalidPage},
		{"page offset overflows", "page=4611686018427387904&take=20", apperror.CodeInvalidPage},
		{"between needs two values", "where__id__between=3", apperror.CodeInvalidFilterValue},
		{"in rejects empty item", "where__id__in=1,,3", apperror.CodeInvalidFilterValue},
		{"first error wins", "where__a__b__c=1&take=0", apperror.CodeInvalidFilterKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Compose(MustParse(tt.raw))
			require.Error(t, err)
			assert.Nil(t, d)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, 400, appErr.HTTPStatus)
		})
	}
}

func TestCompose_ErrorDetails(t *testing.T) {
	_, err := Compose(MustParse("where__title__zzz=x"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "zzz", appErr.Details["operator"])
	assert.Equal(t, "where__title__zzz", appErr.Details["key"])
}

func TestComposer_Options(t *testing.T) {
	c := NewComposer(
		WithDefaultTake(5),
		WithMaxTake(50),
		WithDefaultSort("id", Desc),
	)

	d, err := c.Compose(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, []Sort{{Field: "id", Direction: Desc}}, d.Sort)
	assert.Equal(t, Desc, d.CursorDirection())

	_, err = c.Compose(MustParse("take=51"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTake))

	d, err = c.Compose(MustParse("take=50"))
	require.NoError(t, err)
	assert.Equal(t, 50, d.Limit)
}

func TestComposer_CustomOperator(t *testing.T) {
	reg := NewRegistry(Builtins()...)
	require.NoError(t, reg.Register(Operator{
		Name:  "starts_with",
		Arity: 1,
		SQL:   builtin(t, OpLike).SQL,
		Match: builtin(t, OpLike).Match,
	}))

	d, err := NewComposer(WithRegistry(reg)).Compose(MustParse("where__title__starts_with=go"))
	require.NoError(t, err)
	require.Len(t, d.Filters, 1)

	op, ok := d.Operator(d.Filters[0])
	require.True(t, ok)
	assert.Equal(t, "starts_with", op.Name)

	_, err = Compose(MustParse("where__title__starts_with=go"))
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownOperator))
}

func builtin(t *testing.T, name string) Operator {
	t.Helper()
	op, ok := DefaultRegistry.Lookup(name)
	require.True(t, ok)
	return op
}

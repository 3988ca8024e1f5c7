package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stamps struct {
	CreatedAt time.Time `db:"created_at"`
}

type article struct {
	stamps
	ID      int64    `db:"id"`
	Title   string   `db:"title"`
	Tags    []string `db:"-"`
	Comment string
}

func TestExtractDBColumns(t *testing.T) {
	assert.Equal(t, []string{"created_at", "id", "title"}, ExtractDBColumns[article]())
	assert.Equal(t, []string{"created_at", "id", "title"}, ExtractDBColumns[*article]())
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	a := &article{stamps: stamps{CreatedAt: now}, ID: 7, Title: "go", Tags: []string{"x"}}

	m := StructToMap(a)
	assert.Equal(t, map[string]any{"created_at": now, "id": int64(7), "title": "go"}, m)

	m = StructToMap(a, "id")
	assert.NotContains(t, m, "id")
	assert.Len(t, m, 2)

	assert.Nil(t, StructToMap(42))
}

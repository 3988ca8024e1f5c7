package query

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("postboard/query")

// Identifiable is implemented by entities that can be paged by cursor.
type Identifiable interface {
	GetID() int64
}

// Source is the data layer a paginated listing reads from.
type Source[T any] interface {
	// Find returns the window of rows selected by d.
	Find(ctx context.Context, d *Descriptor) ([]T, error)
	// Count returns how many rows match d's filters, ignoring limit and offset.
	Count(ctx context.Context, d *Descriptor) (int64, error)
}

// Cursor is the continuation block of a cursor-mode response.
type Cursor struct {
	After *int64  `json:"after"`
	Next  *string `json:"next"`
}

// Result is the response envelope of a listing.
// Cursor is set in cursor mode and Total in page mode.
type Result[T any] struct {
	Data   []T     `json:"data"`
	Cursor *Cursor `json:"cursor,omitempty"`
	Count  int     `json:"count"`
	Total  *int64  `json:"total,omitempty"`
}

// Paginator runs composed listings against a Source.
type Paginator[T Identifiable] struct {
	composer *Composer
	source   Source[T]
	baseURL  string
}

// NewPaginator creates a Paginator. baseURL is the absolute URL of the
// listing endpoint used to build next links.
func NewPaginator[T Identifiable](c *Composer, src Source[T], baseURL string) *Paginator[T] {
	if c == nil {
		c = defaultComposer
	}
	return &Paginator[T]{composer: c, source: src, baseURL: baseURL}
}

// Paginate composes opts and fetches one page.
func (p *Paginator[T]) Paginate(ctx context.Context, opts Options) (*Result[T], error) {
	d, err := p.composer.Compose(opts)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "query.Paginate", trace.WithAttributes(
		attribute.String("query.mode", d.Mode().String()),
		attribute.Int("query.take", d.Limit),
		attribute.Int("query.filters", len(d.Filters)),
	))
	defer span.End()

	items, err := p.source.Find(ctx, d)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	res := &Result[T]{Data: items, Count: len(items)}
	if d.Mode() == ModePage {
		total, err := p.source.Count(ctx, d)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		res.Total = &total
		return res, nil
	}

	res.Cursor = &Cursor{}
	if len(items) == d.Limit && len(items) > 0 {
		after := items[len(items)-1].GetID()
		next := NextURL(p.baseURL, WithCursor(opts, d, p.composer, after))
		res.Cursor.After = &after
		res.Cursor.Next = &next
	}
	return res, nil
}

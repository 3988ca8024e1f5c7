package query

import (
	"math"
	"strconv"
	"strings"
)

// Reserved option keys and prefixes.
const (
	KeyPage     = "page"
	KeyTake     = "take"
	WherePrefix = "where"
	OrderPrefix = "order"
	Separator   = "__"
)

// DefaultTake is the page size used when take is absent.
const DefaultTake = 20

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Filter is one where__ clause. Values are raw strings; coercion to the
// field's type happens in the data layer through a Schema.
type Filter struct {
	Field    string
	Operator string
	Values   []string
}

// Sort is one order__ clause.
type Sort struct {
	Field     string
	Direction Direction
}

// Mode selects the pagination strategy.
type Mode int

const (
	ModeCursor Mode = iota
	ModePage
)

func (m Mode) String() string {
	if m == ModePage {
		return "page"
	}
	return "cursor"
}

// Descriptor is the composed, validated form of a request's options.
// It is built fresh per request and never mutated after Compose returns.
type Descriptor struct {
	Filters []Filter
	Sort    []Sort
	Limit   int
	Offset  int
	// Page is the 1-based page number; zero means cursor mode.
	Page int

	ops *Registry
}

// Mode reports page mode when page was supplied.
func (d *Descriptor) Mode() Mode {
	if d.Page > 0 {
		return ModePage
	}
	return ModeCursor
}

// Operator resolves the operator of a filter produced by Compose.
func (d *Descriptor) Operator(f Filter) (Operator, bool) {
	ops := d.ops
	if ops == nil {
		ops = DefaultRegistry
	}
	return ops.Lookup(f.Operator)
}

// CursorDirection is the direction ids advance in: the primary sort's direction.
func (d *Descriptor) CursorDirection() Direction {
	if len(d.Sort) == 0 {
		return Asc
	}
	return d.Sort[0].Direction
}

// Composer turns Options into Descriptors.
type Composer struct {
	registry    *Registry
	defaultTake int
	maxTake     int
	defaultSort Sort
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithRegistry swaps the operator table.
func WithRegistry(r *Registry) ComposerOption {
	return func(c *Composer) { c.registry = r }
}

// WithDefaultTake sets the page size used when take is absent.
func WithDefaultTake(n int) ComposerOption {
	return func(c *Composer) {
		if n > 0 {
			c.defaultTake = n
		}
	}
}

// WithMaxTake rejects take values above n. Zero disables the cap.
func WithMaxTake(n int) ComposerOption {
	return func(c *Composer) { c.maxTake = n }
}

// WithDefaultSort sets the sort applied when no order__ key is given.
func WithDefaultSort(field string, dir Direction) ComposerOption {
	return func(c *Composer) { c.defaultSort = Sort{Field: field, Direction: dir} }
}

// NewComposer creates a Composer with the built-in operators,
// take=20 and createdAt ASC ordering unless overridden.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		registry:    DefaultRegistry,
		defaultTake: DefaultTake,
		defaultSort: Sort{Field: "createdAt", Direction: Asc},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Registry returns the operator table in use.
func (c *Composer) Registry() *Registry {
	return c.registry
}

// DefaultTake returns the page size applied when take is absent.
func (c *Composer) DefaultTake() int {
	return c.defaultTake
}

// DefaultSort returns the sort applied when no order__ key is given.
func (c *Composer) DefaultSort() Sort {
	return c.defaultSort
}

type keyKind int

const (
	keyIgnored keyKind = iota
	keyFilter
	keySort
	keyPage
	keyTake
)

type parsedKey struct {
	kind     keyKind
	field    string
	operator string
}

// parseKey classifies a key before any value is looked at.
func (c *Composer) parseKey(key string) (parsedKey, error) {
	switch key {
	case KeyPage:
		return parsedKey{kind: keyPage}, nil
	case KeyTake:
		return parsedKey{kind: keyTake}, nil
	}

	switch {
	case strings.HasPrefix(key, WherePrefix+Separator):
		parts := strings.Split(key, Separator)
		if !nonEmpty(parts) {
			return parsedKey{}, ErrInvalidFilterKey(key)
		}
		switch len(parts) {
		case 2:
			return parsedKey{kind: keyFilter, field: parts[1], operator: OpEqual}, nil
		case 3:
			if _, ok := c.registry.Lookup(parts[2]); !ok {
				return parsedKey{}, ErrUnknownOperator(key, parts[2])
			}
			return parsedKey{kind: keyFilter, field: parts[1], operator: parts[2]}, nil
		}
		return parsedKey{}, ErrInvalidFilterKey(key)

	case strings.HasPrefix(key, OrderPrefix+Separator):
		parts := strings.Split(key, Separator)
		if len(parts) != 2 || !nonEmpty(parts) {
			return parsedKey{}, ErrInvalidFilterKey(key)
		}
		return parsedKey{kind: keySort, field: parts[1]}, nil
	}
	return parsedKey{kind: keyIgnored}, nil
}

// Compose validates opts and builds a Descriptor.
// Keys are processed in order; the first invalid one fails the whole call.
// For repeated page or take keys the last one wins.
func (c *Composer) Compose(opts Options) (*Descriptor, error) {
	d := &Descriptor{ops: c.registry, Limit: c.defaultTake}

	for _, p := range opts {
		pk, err := c.parseKey(p.Key)
		if err != nil {
			return nil, err
		}

		switch pk.kind {
		case keyPage:
			n, ok := positiveInt(p.Value)
			if !ok {
				return nil, ErrInvalidPage(p.Value)
			}
			d.Page = n
		case keyTake:
			n, ok := positiveInt(p.Value)
			if !ok || (c.maxTake > 0 && n > c.maxTake) {
				return nil, ErrInvalidTake(p.Value)
			}
			d.Limit = n
		case keyFilter:
			op, _ := c.registry.Lookup(pk.operator)
			values, ok := op.Split(p.Value)
			if !ok {
				return nil, ErrInvalidFilterValue(pk.field, pk.operator, []string{p.Value})
			}
			d.Filters = append(d.Filters, Filter{Field: pk.field, Operator: pk.operator, Values: values})
		case keySort:
			dir := Direction(p.Value)
			if dir != Asc && dir != Desc {
				return nil, ErrInvalidSortDirection(p.Key, p.Value)
			}
			d.Sort = append(d.Sort, Sort{Field: pk.field, Direction: dir})
		}
	}

	if len(d.Sort) == 0 {
		d.Sort = []Sort{c.defaultSort}
	}
	if d.Page > 0 {
		if d.Page-1 > math.MaxInt/d.Limit {
			return nil, ErrInvalidPage(strconv.Itoa(d.Page))
		}
		d.Offset = d.Limit * (d.Page - 1)
	}
	return d, nil
}

var defaultComposer = NewComposer()

// Compose runs the default Composer.
func Compose(opts Options) (*Descriptor, error) {
	return defaultComposer.Compose(opts)
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func nonEmpty(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

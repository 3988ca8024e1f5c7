package query

import (
	"strconv"
	"time"
)

// Kind is the value type of a filterable attribute.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindTime
	KindBool
)

// Field maps an API attribute to its storage column.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

// Schema whitelists the attributes of one entity that options may refer to.
type Schema struct {
	fields map[string]Field
	idName string
}

// NewSchema builds a Schema. The first field is treated as the identifier.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{fields: make(map[string]Field, len(fields))}
	for i, f := range fields {
		if f.Column == "" {
			f.Column = f.Name
		}
		if i == 0 {
			s.idName = f.Name
		}
		s.fields[f.Name] = f
	}
	return s
}

// Field returns the attribute called name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// ID returns the identifier attribute.
func (s *Schema) ID() Field {
	return s.fields[s.idName]
}

// Validate checks every filter and sort of d against the schema and
// coerces filter values. It returns the coerced arguments per filter.
func (s *Schema) Validate(d *Descriptor) ([][]any, error) {
	args := make([][]any, len(d.Filters))
	for i, f := range d.Filters {
		a, err := s.Args(d, f)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	for _, o := range d.Sort {
		if _, ok := s.fields[o.Field]; !ok {
			return nil, ErrUnknownField(o.Field)
		}
	}
	return args, nil
}

// Args coerces the raw values of f to the field's kind.
func (s *Schema) Args(d *Descriptor, f Filter) ([]any, error) {
	field, ok := s.fields[f.Field]
	if !ok {
		return nil, ErrUnknownField(f.Field)
	}
	op, ok := d.Operator(f)
	if !ok {
		return nil, ErrUnknownOperator(WherePrefix+Separator+f.Field+Separator+f.Operator, f.Operator)
	}
	if op.TextOnly && field.Kind != KindString {
		return nil, ErrInvalidFilterValue(f.Field, f.Operator, f.Values)
	}
	out := make([]any, len(f.Values))
	for i, raw := range f.Values {
		v, err := Coerce(field.Kind, raw)
		if err != nil {
			return nil, ErrInvalidFilterValue(f.Field, f.Operator, f.Values).WithCause(err)
		}
		out[i] = v
	}
	return out, nil
}

// Coerce converts a raw option value to the Go type used for kind.
func Coerce(kind Kind, raw string) (any, error) {
	switch kind {
	case KindInt:
		return strconv.ParseInt(raw, 10, 64)
	case KindTime:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, nil
		}
		return time.Parse(time.DateOnly, raw)
	case KindBool:
		return strconv.ParseBool(raw)
	}
	return raw, nil
}

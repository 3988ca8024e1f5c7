package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

// Operator names understood out of the box.
const (
	OpEqual           = "equal"
	OpNot             = "not"
	OpMoreThan        = "more_than"
	OpMoreThanOrEqual = "more_than_or_equal"
	OpLessThan        = "less_than"
	OpLessThanOrEqual = "less_than_or_equal"
	OpBetween         = "between"
	OpIn              = "in"
	OpLike            = "like"
	OpILike           = "i_like"
)

// Variadic marks an operator that takes one or more comma-separated values.
const Variadic = -1

// Operator describes one where__<field>__<name> predicate.
// SQL and Match must agree so every data layer returns the same rows.
type Operator struct {
	Name string

	// Arity is the number of comma-separated values, or Variadic.
	// Arity 1 takes the raw value as is, commas included.
	Arity int

	// TextOnly restricts the operator to string fields.
	TextOnly bool

	// SQL renders the predicate for column with already coerced args.
	SQL func(column string, args []any) squirrel.Sqlizer

	// Match evaluates the predicate against an in-memory value.
	Match func(value any, args []any) bool
}

// Split turns the raw option value into operator arguments.
func (op Operator) Split(raw string) ([]string, bool) {
	if op.Arity == 1 {
		return []string{raw}, true
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}
	if op.Arity == Variadic {
		return parts, len(parts) > 0
	}
	return parts, len(parts) == op.Arity
}

// Registry maps operator names to operators.
// It is filled during startup and only read afterwards; Register is not
// safe to call concurrently with Lookup.
type Registry struct {
	ops map[string]Operator
}

// NewRegistry builds a registry from ops.
func NewRegistry(ops ...Operator) *Registry {
	r := &Registry{ops: make(map[string]Operator, len(ops))}
	for _, op := range ops {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds an operator. Names are unique.
func (r *Registry) Register(op Operator) error {
	if op.Name == "" || strings.Contains(op.Name, "__") {
		return fmt.Errorf("query: invalid operator name %q", op.Name)
	}
	if op.SQL == nil || op.Match == nil {
		return fmt.Errorf("query: operator %q needs SQL and Match", op.Name)
	}
	if op.Arity == 0 || op.Arity < Variadic {
		return fmt.Errorf("query: operator %q has invalid arity %d", op.Name, op.Arity)
	}
	if _, dup := r.ops[op.Name]; dup {
		return fmt.Errorf("query: operator %q already registered", op.Name)
	}
	r.ops[op.Name] = op
	return nil
}

// Lookup returns the operator registered under name.
func (r *Registry) Lookup(name string) (Operator, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names lists registered operators alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for n := range r.ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in operators.
var DefaultRegistry = NewRegistry(Builtins()...)

// Builtins returns the stock operator set.
func Builtins() []Operator {
	return []Operator{
		comparison(OpEqual, func(c int) bool { return c == 0 },
			func(col string, v any) squirrel.Sqlizer { return squirrel.Eq{col: v} }),
		comparison(OpNot, func(c int) bool { return c != 0 },
			func(col string, v any) squirrel.Sqlizer { return squirrel.NotEq{col: v} }),
		comparison(OpMoreThan, func(c int) bool { return c > 0 },
			func(col string, v any) squirrel.Sqlizer { return squirrel.Gt{col: v} }),
		comparison(OpMoreThanOrEqual, func(c int) bool { return c >= 0 },
			func(col string, v any) squirrel.Sqlizer { return squirrel.GtOrEq{col: v} }),
		comparison(OpLessThan, func(c int) bool { return c < 0 },
			func(col string, v any) squirrel.Sqlizer { return squirrel.Lt{col: v} }),
		comparison(OpLessThanOrEqual, func(c int) bool { return c <= 0 },
			func(col string, v any) squirrel.Sqlizer { return squirrel.LtOrEq{col: v} }),
		{
			Name:  OpBetween,
			Arity: 2,
			SQL: func(col string, args []any) squirrel.Sqlizer {
				return squirrel.Expr(col+" BETWEEN ? AND ?", args[0], args[1])
			},
			Match: func(value any, args []any) bool {
				lo, ok1 := Compare(value, args[0])
				hi, ok2 := Compare(value, args[1])
				return ok1 && ok2 && lo >= 0 && hi <= 0
			},
		},
		{
			Name:  OpIn,
			Arity: Variadic,
			SQL: func(col string, args []any) squirrel.Sqlizer {
				return squirrel.Eq{col: args}
			},
			Match: func(value any, args []any) bool {
				for _, a := range args {
					if c, ok := Compare(value, a); ok && c == 0 {
						return true
					}
				}
				return false
			},
		},
		{
			Name:     OpLike,
			Arity:    1,
			TextOnly: true,
			SQL: func(col string, args []any) squirrel.Sqlizer {
				return squirrel.Like{col: fmt.Sprintf("%%%s%%", args[0])}
			},
			Match: func(value any, args []any) bool {
				s, ok := value.(string)
				p, ok2 := args[0].(string)
				return ok && ok2 && strings.Contains(s, p)
			},
		},
		{
			Name:     OpILike,
			Arity:    1,
			TextOnly: true,
			SQL: func(col string, args []any) squirrel.Sqlizer {
				return squirrel.ILike{col: fmt.Sprintf("%%%s%%", args[0])}
			},
			Match: func(value any, args []any) bool {
				s, ok := value.(string)
				p, ok2 := args[0].(string)
				return ok && ok2 && strings.Contains(strings.ToLower(s), strings.ToLower(p))
			},
		},
	}
}

func comparison(name string, accept func(int) bool, sql func(string, any) squirrel.Sqlizer) Operator {
	return Operator{
		Name:  name,
		Arity: 1,
		SQL: func(col string, args []any) squirrel.Sqlizer {
			return sql(col, args[0])
		},
		Match: func(value any, args []any) bool {
			c, ok := Compare(value, args[0])
			return ok && accept(c)
		},
	}
}

// Compare orders two values of the same field kind.
// It reports false when the values are not comparable.
func Compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

package postgres

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"postboard/internal/core/apperror"
	"postboard/internal/domain/query"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ApplyFilters adds the WHERE clauses of d. Field names are translated
// through s; alias, when set, qualifies every column ("p" gives "p.title").
func ApplyFilters(q squirrel.SelectBuilder, d *query.Descriptor, s *query.Schema, alias string) (squirrel.SelectBuilder, error) {
	args, err := s.Validate(d)
	if err != nil {
		return q, err
	}
	for i, f := range d.Filters {
		op, _ := d.Operator(f)
		field, _ := s.Field(f.Field)
		q = q.Where(op.SQL(qualify(alias, field.Column), args[i]))
	}
	return q, nil
}

// ApplyOrder adds ORDER BY with an id tie-breaker plus LIMIT and OFFSET.
func ApplyOrder(q squirrel.SelectBuilder, d *query.Descriptor, s *query.Schema, alias string) (squirrel.SelectBuilder, error) {
	for _, o := range query.OrderWithTieBreaker(d, s) {
		field, ok := s.Field(o.Field)
		if !ok {
			return q, query.ErrUnknownField(o.Field)
		}
		q = q.OrderBy(qualify(alias, field.Column) + " " + string(o.Direction))
	}
	if d.Limit > 0 {
		q = q.Limit(uint64(d.Limit))
	}
	if d.Offset > 0 {
		q = q.Offset(uint64(d.Offset))
	}
	return q, nil
}

func qualify(alias, column string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapError converts constraint violations to AppErrors and wraps everything else.
func MapError(op, entity string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewConflict(fmt.Sprintf("%s already exists", entity)).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewNotFound("referenced entity", pgErr.ConstraintName).WithCause(err)
		}
	}
	return apperror.NewDatabase(op, err)
}

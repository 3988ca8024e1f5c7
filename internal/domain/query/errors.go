package query

import (
	"postboard/internal/core/apperror"
)

// ErrInvalidFilterKey is returned for a where__/order__ key with the wrong shape.
func ErrInvalidFilterKey(key string) *apperror.AppError {
	return apperror.NewBadRequest(apperror.CodeInvalidFilterKey,
		"filter key must split by '__' into 2 or 3 segments").
		WithDetail("key", key)
}

// ErrUnknownOperator is returned when where__<field>__<op> names an unregistered operator.
func ErrUnknownOperator(key, operator string) *apperror.AppError {
	return apperror.NewBadRequest(apperror.CodeUnknownOperator, "unknown filter operator").
		WithDetail("key", key).
		WithDetail("operator", operator)
}

// ErrInvalidSortDirection is returned when an order__ value is not ASC or DESC.
func ErrInvalidSortDirection(key, value string) *apperror.AppError {
	return apperror.NewBadRequest(apperror.CodeInvalidSortDirection, "sort direction must be ASC or DESC").
		WithDetail("key", key).
		WithDetail("value", value)
}

// ErrInvalidTake is returned when take is not a positive integer or exceeds the limit.
func ErrInvalidTake(value string) *apperror.AppError {
	return apperror.NewBadRequest(apperror.CodeInvalidTake, "take must be a positive integer").
		WithDetail("value", value)
}

// ErrInvalidPage is returned when page is not a positive integer.
func ErrInvalidPage(value string) *apperror.AppError {
	return apperror.NewBadRequest(apperror.CodeInvalidPage, "page must be a positive integer").
		WithDetail("value", value)
}

// ErrInvalidFilterValue is returned when a filter value cannot be used by its operator or field.
func ErrInvalidFilterValue(field, operator string, values []string) *apperror.AppError {
	return apperror.NewBadRequest(apperror.CodeInvalidFilterValue, "invalid filter value").
		WithDetail("field", field).
		WithDetail("operator", operator).
		WithDetail("value", values)
}

// ErrUnknownField is returned when a filter or sort names an attribute the entity lacks.
func ErrUnknownField(field string) *apperror.AppError {
	return apperror.NewBadRequest(apperror.CodeUnknownField, "unknown field").
		WithDetail("field", field)
}

// Package utils provides small helpers shared by the HTTP and service layers.
// They are independent of storage and transport.
package utils

import (
	"strconv"

	"github.com/tbourn/go-qa-backend/internal/apperr"
	"github.com/tbourn/go-qa-backend/internal/domain"
)

// DefaultPagination is applied when a list request carries no query
// parameters: unbounded limit, zero offset.
func DefaultPagination() domain.Pagination {
	return domain.Pagination{Limit: nil, Offset: 0}
}

// ExtractPagination turns a list request's query map into a Pagination.
//
// An empty map yields DefaultPagination. Otherwise both "start" and "end" must
// be present (their values are not used); "limit" and "offset" must then be
// present and parse as 32-bit signed integers, and neither may be negative
// (OutOfRange). No upper bound is enforced here.
//
// Example:
//
//	p, err := utils.ExtractPagination(map[string]string{
//		"start": "0", "end": "10", "limit": "5", "offset": "2",
//	}) // p.Limit == 5, p.Offset == 2
func ExtractPagination(params map[string]string) (domain.Pagination, error) {
	if len(params) == 0 {
		return DefaultPagination(), nil
	}

	_, hasStart := params["start"]
	_, hasEnd := params["end"]
	if !hasStart || !hasEnd {
		return domain.Pagination{}, apperr.New(apperr.MissingParameters, "start and/or end parameters missing")
	}

	limit, err := int32Param(params, "limit")
	if err != nil {
		return domain.Pagination{}, err
	}
	offset, err := int32Param(params, "offset")
	if err != nil {
		return domain.Pagination{}, err
	}
	p := domain.Pagination{Limit: &limit, Offset: offset}
	if err := CheckPagination(p); err != nil {
		return domain.Pagination{}, err
	}
	return p, nil
}

// CheckPagination rejects a negative limit or offset with OutOfRange.
func CheckPagination(p domain.Pagination) error {
	if p.Limit != nil && *p.Limit < 0 {
		return apperr.New(apperr.OutOfRange, "limit="+strconv.Itoa(int(*p.Limit)))
	}
	if p.Offset < 0 {
		return apperr.New(apperr.OutOfRange, "offset="+strconv.Itoa(int(p.Offset)))
	}
	return nil
}

// int32Param reads key from params and parses it as an int32.
func int32Param(params map[string]string, key string) (int32, error) {
	raw, ok := params[key]
	if !ok {
		return 0, apperr.New(apperr.MissingParameters, key)
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, &apperr.Error{Kind: apperr.Parse, Context: raw, Err: err}
	}
	return int32(n), nil
}

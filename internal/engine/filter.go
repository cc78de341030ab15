// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

const (
	QueryParamFrom  string = "from"
	QueryParamTo    string = "to"
	QueryParamSort  string = "sort"
	QueryParamLimit string = "limit"
	QueryParamPage  string = "page"
)

type Operator string

const (
	OperatorEqual          Operator = "eq"
	OperatorContains       Operator = "contains"
	OperatorGreaterOrEqual Operator = "gte"
	OperatorLessOrEqual    Operator = "lte"
)

type Condition struct {
	Field    Field
	Operator Operator
	Value    Value
}

// Filter is a conjunction of conditions over record payloads.
type Filter struct {
	Conditions []Condition
}

func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}

// Matches evaluates the filter against a payload. A condition on a missing
// key or on a value of another kind never matches.
func (f Filter) Matches(p *Payload) bool {
	folder := cases.Fold()
	for _, c := range f.Conditions {
		v, ok := p.Get(c.Field.Key)
		if !ok || v.Kind() != c.Value.Kind() {
			return false
		}

		switch c.Operator {
		case OperatorContains:
			sv, ok := v.(StringVal)
			if !ok {
				return false
			}
			needle := string(c.Value.(StringVal))
			if !strings.Contains(folder.String(string(sv)), folder.String(needle)) {
				return false
			}
		case OperatorEqual:
			if !EqualValues(v, c.Value) {
				return false
			}
		case OperatorGreaterOrEqual:
			if CompareValues(v, c.Value) < 0 {
				return false
			}
		case OperatorLessOrEqual:
			if CompareValues(v, c.Value) > 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

type QueryOptions struct {
	// StrictJSON turns malformed from, to and sort parameters into errors
	// instead of ignoring them.
	StrictJSON bool
}

// BuildFilter reads exact, substring and range conditions from query
// parameters. String fields match case-insensitive substrings, other types
// match exactly. The from and to parameters hold JSON objects of inclusive
// bounds for number and date fields.
func BuildFilter(query map[string]string, fields []Field, opts QueryOptions) (Filter, []string) {
	errs := make([]string, 0)
	conditions := make([]Condition, 0)

	for _, f := range fields {
		raw, ok := query[f.Key]
		if !ok {
			continue
		}

		v, err := Coerce(f.Key, f.DataType, raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Error in query for field '%s': %s", f.Key, err.Error()))
			continue
		}

		op := OperatorEqual
		if f.DataType == DataTypeString {
			op = OperatorContains
		}
		conditions = append(conditions, Condition{Field: f, Operator: op, Value: v})
	}

	for _, bound := range [2]struct {
		param string
		op    Operator
	}{
		{param: QueryParamFrom, op: OperatorGreaterOrEqual},
		{param: QueryParamTo, op: OperatorLessOrEqual},
	} {
		raw, ok := query[bound.param]
		if !ok || raw == "" {
			continue
		}

		bounds, err := parseJSONObject(raw)
		if err != nil {
			if opts.StrictJSON {
				errs = append(errs, fmt.Sprintf("Invalid JSON in '%s' parameter.", bound.param))
			}
			continue
		}

		for _, f := range fields {
			rv, ok := bounds[f.Key]
			if !ok || !IsRangeDataType(f.DataType) {
				continue
			}

			v, err := Coerce(f.Key, f.DataType, rv)
			if err != nil {
				errs = append(errs, fmt.Sprintf(
					"Invalid data type for filter '%s' of field '%s': %s",
					bound.param,
					f.Key,
					err.Error(),
				))
				continue
			}
			conditions = append(conditions, Condition{Field: f, Operator: bound.op, Value: v})
		}
	}

	return Filter{Conditions: conditions}, errs
}

func parseJSONObject(raw string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return obj, nil
}

// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// InvalidFieldTypeError reports a value that cannot be read as the declared
// data type of its field.
type InvalidFieldTypeError struct {
	FieldKey string
	DataType DataType
}

func (e *InvalidFieldTypeError) Error() string {
	switch e.DataType {
	case DataTypeString:
		return fmt.Sprintf("Field '%s' must be a string.", e.FieldKey)
	case DataTypeNumber:
		return fmt.Sprintf("Field '%s' must be a number.", e.FieldKey)
	case DataTypeBoolean:
		return fmt.Sprintf("Field '%s' must be a boolean.", e.FieldKey)
	case DataTypeDate:
		return fmt.Sprintf("Field '%s' must be a valid date.", e.FieldKey)
	default:
		return fmt.Sprintf("Field '%s' must be of type %s.", e.FieldKey, e.DataType)
	}
}

var dateLayouts = [...]string{
	time.RFC3339Nano,
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Coerce converts an untyped value into the declared data type of a field.
// Unknown data types are passed through unchanged as raw values.
func Coerce(fieldKey string, dataType DataType, raw any) (Value, error) {
	switch dataType {
	case DataTypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, &InvalidFieldTypeError{FieldKey: fieldKey, DataType: dataType}
		}
		return StringVal(s), nil
	case DataTypeNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, &InvalidFieldTypeError{FieldKey: fieldKey, DataType: dataType}
		}
		return NumberVal(n), nil
	case DataTypeBoolean:
		switch v := raw.(type) {
		case bool:
			return BoolVal(v), nil
		case string:
			if v == "true" {
				return BoolVal(true), nil
			}
			if v == "false" {
				return BoolVal(false), nil
			}
		}
		return nil, &InvalidFieldTypeError{FieldKey: fieldKey, DataType: dataType}
	case DataTypeDate:
		t, ok := toTime(raw)
		if !ok {
			return nil, &InvalidFieldTypeError{FieldKey: fieldKey, DataType: dataType}
		}
		return NewDateVal(t), nil
	default:
		return RawVal{V: raw}, nil
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toNumber(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	return f, finite(f)
}

// Dates are limited to years 0000 to 9999, where their DateLayout text sorts
// in time order.
func toTime(raw any) (time.Time, bool) {
	t, ok := parseTime(raw)
	if !ok {
		return time.Time{}, false
	}
	if year := t.UTC().Year(); year < 0 || year > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func parseTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case bool, nil:
		return time.Time{}, false
	default:
		// Numbers are milliseconds since the Unix epoch.
		ms, ok := toNumber(raw)
		if !ok || math.Abs(ms) > 8.64e15 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}
}

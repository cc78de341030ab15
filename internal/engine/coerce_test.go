// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestCoerce(t *testing.T) {
	testCases := []struct {
		Name     string
		DataType DataType
		Raw      any
		Expected Value
	}{
		{Name: "string keeps text", DataType: DataTypeString, Raw: "hello", Expected: StringVal("hello")},
		{Name: "string keeps empty text", DataType: DataTypeString, Raw: "", Expected: StringVal("")},
		{Name: "number from float", DataType: DataTypeNumber, Raw: 42.5, Expected: NumberVal(42.5)},
		{Name: "number from int", DataType: DataTypeNumber, Raw: 7, Expected: NumberVal(7)},
		{Name: "number from numeric string", DataType: DataTypeNumber, Raw: " 20 ", Expected: NumberVal(20)},
		{Name: "number from json number", DataType: DataTypeNumber, Raw: json.Number("-3.25"), Expected: NumberVal(-3.25)},
		{Name: "boolean true", DataType: DataTypeBoolean, Raw: true, Expected: BoolVal(true)},
		{Name: "boolean from string false", DataType: DataTypeBoolean, Raw: "false", Expected: BoolVal(false)},
		{
			Name:     "date from RFC3339",
			DataType: DataTypeDate,
			Raw:      "2024-03-01T10:20:30.123456Z",
			Expected: NewDateVal(time.Date(2024, 3, 1, 10, 20, 30, 123000000, time.UTC)),
		},
		{
			Name:     "date from calendar day",
			DataType: DataTypeDate,
			Raw:      "2024-03-01",
			Expected: NewDateVal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			Name:     "date from epoch milliseconds",
			DataType: DataTypeDate,
			Raw:      float64(86400000),
			Expected: NewDateVal(time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)),
		},
		{
			Name:     "date at the end of year 9999",
			DataType: DataTypeDate,
			Raw:      float64(253402300799999),
			Expected: NewDateVal(time.Date(9999, 12, 31, 23, 59, 59, 999000000, time.UTC)),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			v, err := Coerce("field", tc.DataType, tc.Raw)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !EqualValues(v, tc.Expected) {
				t.Fatalf("Actual: %#v, Expected: %#v", v, tc.Expected)
			}
		})
	}
}

func TestCoerceInvalid(t *testing.T) {
	testCases := []struct {
		Name     string
		DataType DataType
		Raw      any
		Message  string
	}{
		{Name: "string rejects numbers", DataType: DataTypeString, Raw: 10.0, Message: "Field 'field' must be a string."},
		{Name: "string rejects booleans", DataType: DataTypeString, Raw: true, Message: "Field 'field' must be a string."},
		{Name: "number rejects words", DataType: DataTypeNumber, Raw: "ten", Message: "Field 'field' must be a number."},
		{Name: "number rejects empty text", DataType: DataTypeNumber, Raw: "", Message: "Field 'field' must be a number."},
		{Name: "number rejects infinity", DataType: DataTypeNumber, Raw: math.Inf(1), Message: "Field 'field' must be a number."},
		{Name: "number rejects booleans", DataType: DataTypeNumber, Raw: true, Message: "Field 'field' must be a number."},
		{Name: "boolean is case sensitive", DataType: DataTypeBoolean, Raw: "True", Message: "Field 'field' must be a boolean."},
		{Name: "boolean rejects numbers", DataType: DataTypeBoolean, Raw: 1.0, Message: "Field 'field' must be a boolean."},
		{Name: "date rejects garbage", DataType: DataTypeDate, Raw: "not a date", Message: "Field 'field' must be a valid date."},
		{Name: "date rejects impossible days", DataType: DataTypeDate, Raw: "2024-02-31", Message: "Field 'field' must be a valid date."},
		{Name: "date rejects booleans", DataType: DataTypeDate, Raw: false, Message: "Field 'field' must be a valid date."},
		{Name: "date rejects years past 9999", DataType: DataTypeDate, Raw: float64(253402300800000), Message: "Field 'field' must be a valid date."},
		{Name: "date rejects the largest epoch", DataType: DataTypeDate, Raw: 8.64e15, Message: "Field 'field' must be a valid date."},
		{Name: "date rejects years before 0000", DataType: DataTypeDate, Raw: "0000-01-01T00:00:00+01:00", Message: "Field 'field' must be a valid date."},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := Coerce("field", tc.DataType, tc.Raw)
			var typeErr *InvalidFieldTypeError
			if !errors.As(err, &typeErr) {
				t.Fatalf("Expected InvalidFieldTypeError, got: %v", err)
			}
			AssertEqual(t, typeErr.FieldKey, "field")
			AssertEqual(t, typeErr.Error(), tc.Message)
		})
	}
}

func TestCoerceUnknownTypePassesThrough(t *testing.T) {
	raw := map[string]any{"nested": true}
	v, err := Coerce("meta", "object", raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	AssertEqual(t, v.Kind(), KindRaw)
	if _, ok := v.Interface().(map[string]any); !ok {
		t.Fatalf("Expected raw map, got %T", v.Interface())
	}
}

// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"fmt"
	"regexp"
)

type DataType = string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeDate    DataType = "date"
)

// Field describes one column of a runtime table schema.
type Field struct {
	Key        string   `json:"fieldKey" msgpack:"k" dynamodbav:"fieldKey"`
	Name       string   `json:"fieldName" msgpack:"n" dynamodbav:"fieldName"`
	DataType   DataType `json:"dataType" msgpack:"t" dynamodbav:"dataType"`
	Required   bool     `json:"isRequired" msgpack:"r" dynamodbav:"isRequired"`
	PrimaryKey bool     `json:"isPrimaryKey" msgpack:"p" dynamodbav:"isPrimaryKey"`
}

func IsKnownDataType(dataType string) bool {
	switch dataType {
	case DataTypeString, DataTypeNumber, DataTypeBoolean, DataTypeDate:
		return true
	default:
		return false
	}
}

// IsRangeDataType reports whether from/to bounds apply to the data type.
func IsRangeDataType(dataType string) bool {
	return dataType == DataTypeNumber || dataType == DataTypeDate
}

func FindField(fields []Field, key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}

	return Field{}, false
}

func PrimaryFields(fields []Field) []Field {
	primary := make([]Field, 0)
	for _, f := range fields {
		if f.PrimaryKey {
			primary = append(primary, f)
		}
	}
	return primary
}

// Record keys rendered next to the payload and the list query parameters
// cannot be used as field keys.
var reservedKeys = map[string]struct{}{
	"id":            {},
	"createdAt":     {},
	"updatedAt":     {},
	QueryParamLimit: {},
	QueryParamPage:  {},
	QueryParamSort:  {},
	QueryParamFrom:  {},
	QueryParamTo:    {},
}

func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

var fieldKeyRgx = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const MaxFieldKeyLength int = 50

// IsValidFieldKey reports whether key can identify a field in payloads and
// query strings.
func IsValidFieldKey(key string) bool {
	return len(key) <= MaxFieldKeyLength && fieldKeyRgx.MatchString(key) && !IsReservedKey(key)
}

// ValidateFields checks the invariants of a schema that tags cannot express:
// valid, unreserved and distinct keys with known data types.
func ValidateFields(fields []Field) []string {
	errs := make([]string, 0)
	seen := make(map[string]struct{}, len(fields))

	for _, f := range fields {
		if !IsValidFieldKey(f.Key) {
			errs = append(errs, fmt.Sprintf("Field key '%s' is invalid.", f.Key))
		}
		if _, ok := seen[f.Key]; ok {
			errs = append(errs, fmt.Sprintf("Field key '%s' is duplicated.", f.Key))
		}
		seen[f.Key] = struct{}{}
		if !IsKnownDataType(f.DataType) {
			errs = append(errs, fmt.Sprintf("Field '%s' has an unknown data type '%s'.", f.Key, f.DataType))
		}
	}

	return errs
}

// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import "testing"

func AssertEqual[V comparable](t *testing.T, actual, expected V) {
	t.Helper()
	if expected != actual {
		t.Fatalf("Actual: %v, Expected: %v", actual, expected)
	}
}

func AssertErrors(t *testing.T, errs []string, expected ...string) {
	t.Helper()
	if len(errs) != len(expected) {
		t.Fatalf("Actual errors: %v, Expected: %v", errs, expected)
	}
	for i := range expected {
		AssertEqual(t, errs[i], expected[i])
	}
}

var testFields = []Field{
	{Key: "name", Name: "Name", DataType: DataTypeString, Required: true},
	{Key: "email", Name: "Email", DataType: DataTypeString, Required: true, PrimaryKey: true},
	{Key: "age", Name: "Age", DataType: DataTypeNumber},
	{Key: "active", Name: "Active", DataType: DataTypeBoolean},
	{Key: "birthday", Name: "Birthday", DataType: DataTypeDate},
}

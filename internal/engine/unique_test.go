// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"strings"
	"testing"
)

func TestUniqueValueKey(t *testing.T) {
	t.Run("Should keep keys short for long values", func(t *testing.T) {
		key := UniqueValue{FieldKey: "email", Value: StringVal(strings.Repeat("a", 40_000))}.Key()
		AssertEqual(t, len(key), len("email=")+64)
		AssertEqual(t, strings.HasPrefix(key, "email="), true)
	})

	t.Run("Should tell apart values of different types", func(t *testing.T) {
		str := UniqueValue{FieldKey: "code", Value: StringVal("1")}.Key()
		num := UniqueValue{FieldKey: "code", Value: NumberVal(1)}.Key()
		if str == num {
			t.Fatal("String and number values share a key")
		}
	})

	t.Run("Should be stable for equal values", func(t *testing.T) {
		a := UniqueValue{FieldKey: "email", Value: StringVal("ada@example.com")}.Key()
		b := UniqueValue{FieldKey: "email", Value: StringVal("ada@example.com")}.Key()
		AssertEqual(t, a, b)
	})
}

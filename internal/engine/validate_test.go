// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"slices"
	"testing"
)

func TestValidateRecord(t *testing.T) {
	t.Run("Should normalize declared fields and drop unknown keys", func(t *testing.T) {
		res := ValidateRecord(map[string]any{
			"age":     "31",
			"name":    "Ada",
			"email":   "ada@example.com",
			"unknown": "dropped",
		}, testFields, true)

		AssertEqual(t, res.OK, true)
		AssertErrors(t, res.Errors)
		if !slices.Equal(res.Normalized.Keys(), []string{"name", "email", "age"}) {
			t.Fatalf("Unexpected keys: %v", res.Normalized.Keys())
		}
		age, _ := res.Normalized.Get("age")
		AssertEqual(t, age.(NumberVal), NumberVal(31))
		AssertEqual(t, res.Normalized.Has("unknown"), false)
	})

	t.Run("Should fail on missing required fields when enforced", func(t *testing.T) {
		res := ValidateRecord(map[string]any{"age": 10.0}, testFields, true)

		AssertEqual(t, res.OK, false)
		AssertErrors(t, res.Errors,
			"Field 'name' is required.",
			"Field 'email' is required.",
		)
	})

	t.Run("Should skip missing fields when not enforced", func(t *testing.T) {
		res := ValidateRecord(map[string]any{"age": 10.0}, testFields, false)

		AssertEqual(t, res.OK, true)
		AssertEqual(t, res.Normalized.Len(), 1)
		AssertEqual(t, res.Normalized.Has("name"), false)
	})

	t.Run("Should accumulate coercion errors", func(t *testing.T) {
		res := ValidateRecord(map[string]any{
			"name":   5.0,
			"email":  "a@x.com",
			"active": "yes",
		}, testFields, true)

		AssertEqual(t, res.OK, false)
		AssertErrors(t, res.Errors,
			"Field 'name' must be a string.",
			"Field 'active' must be a boolean.",
		)
		AssertEqual(t, res.Normalized.Has("email"), true)
	})
}

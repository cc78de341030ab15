// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"slices"
	"testing"
	"time"
)

func TestPayloadJSONKeepsOrder(t *testing.T) {
	p := NewPayload(3)
	p.Set("zeta", StringVal("z"))
	p.Set("alpha", NumberVal(1.5))
	p.Set("when", NewDateVal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	b, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	AssertEqual(t, string(b), `{"zeta":"z","alpha":1.5,"when":"2024-01-02T03:04:05.000Z"}`)
}

func TestPayloadMerge(t *testing.T) {
	base := NewPayload(2)
	base.Set("name", StringVal("Ada"))
	base.Set("age", NumberVal(30))

	patch := NewPayload(1)
	patch.Set("age", NumberVal(31))
	patch.Set("active", BoolVal(true))

	merged := base.Merge(patch)
	if !slices.Equal(merged.Keys(), []string{"name", "age", "active"}) {
		t.Fatalf("Unexpected keys: %v", merged.Keys())
	}
	age, _ := merged.Get("age")
	AssertEqual(t, age.(NumberVal), NumberVal(31))

	baseAge, _ := base.Get("age")
	AssertEqual(t, baseAge.(NumberVal), NumberVal(30))
}

func TestDecodePayload(t *testing.T) {
	p := DecodePayload(map[string]any{
		"legacy":   "kept",
		"age":      "not a number anymore",
		"birthday": "2000-05-06T00:00:00.000Z",
		"name":     "Ada",
	}, testFields)

	if !slices.Equal(p.Keys(), []string{"name", "age", "birthday", "legacy"}) {
		t.Fatalf("Unexpected keys: %v", p.Keys())
	}
	age, _ := p.Get("age")
	AssertEqual(t, age.Kind(), KindRaw)
	birthday, _ := p.Get("birthday")
	AssertEqual(t, birthday.Kind(), KindDate)
}

func TestUniqueValues(t *testing.T) {
	p := buildPayload(t, map[string]any{"email": "a@x.com", "name": "A"})
	values := UniqueValues(testFields, p)

	AssertEqual(t, len(values), 1)
	AssertEqual(t, values[0].FieldKey, "email")
	AssertEqual(t, values[0].Value.Key(), "s:a@x.com")
}

// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"crypto/sha256"
	"encoding/hex"
)

// UniqueValue is one entry of a table's unique value index.
type UniqueValue struct {
	FieldKey string
	Value    Value
}

// Key identifies the value in the index. The value is hashed so that keys
// stay within the key size limits of every store.
func (u UniqueValue) Key() string {
	sum := sha256.Sum256([]byte(u.Value.Key()))
	return u.FieldKey + "=" + hex.EncodeToString(sum[:])
}

// UniqueValues lists the primary field values present in a payload.
func UniqueValues(fields []Field, payload *Payload) []UniqueValue {
	values := make([]UniqueValue, 0)
	for _, f := range fields {
		if !f.PrimaryKey {
			continue
		}
		if v, ok := payload.Get(f.Key); ok {
			values = append(values, UniqueValue{FieldKey: f.Key, Value: v})
		}
	}
	return values
}

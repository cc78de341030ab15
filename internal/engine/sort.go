// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

type SortKey struct {
	FieldKey  string
	Direction Direction
}

// ParseSort reads a JSON object of field key to 1 or -1. Keys keep the order
// they appear in, the first key being the primary sort key.
func ParseSort(raw string, fields []Field, opts QueryOptions) ([]SortKey, []string) {
	keys := make([]SortKey, 0)
	errs := make([]string, 0)
	if strings.TrimSpace(raw) == "" {
		return keys, errs
	}

	entries, err := parseOrderedObject(raw)
	if err != nil {
		if opts.StrictJSON {
			errs = append(errs, "Invalid JSON in 'sort' parameter.")
		}
		return keys, errs
	}

	for _, e := range entries {
		if _, ok := FindField(fields, e.key); !ok {
			errs = append(errs, fmt.Sprintf("Field '%s' is not a valid sort field.", e.key))
			continue
		}

		dir, ok := parseDirection(e.value)
		if !ok {
			errs = append(errs, fmt.Sprintf("Sort value for '%s' must be 1 or -1.", e.key))
			continue
		}

		replaced := false
		for i := range keys {
			if keys[i].FieldKey == e.key {
				keys[i].Direction = dir
				replaced = true
				break
			}
		}
		if !replaced {
			keys = append(keys, SortKey{FieldKey: e.key, Direction: dir})
		}
	}

	return keys, errs
}

func parseDirection(raw json.RawMessage) (Direction, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	switch f {
	case 1:
		return Ascending, true
	case -1:
		return Descending, true
	default:
		return 0, false
	}
}

type orderedEntry struct {
	key   string
	value json.RawMessage
}

var errNotObject = errors.New("expected a JSON object")

// parseOrderedObject decodes a JSON object keeping its key order. A valid JSON
// document that is not an object yields no entries.
func parseOrderedObject(raw string) ([]orderedEntry, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		if !json.Valid([]byte(raw)) {
			return nil, errNotObject
		}
		return nil, nil
	}

	entries := make([]orderedEntry, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errNotObject
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, orderedEntry{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errNotObject
	}

	return entries, nil
}

// ComparePayloads orders two payloads by the sort keys, in precedence order.
func ComparePayloads(a, b *Payload, keys []SortKey) int {
	for _, k := range keys {
		av, _ := a.Get(k.FieldKey)
		bv, _ := b.Get(k.FieldKey)
		if c := CompareValues(av, bv); c != 0 {
			return c * int(k.Direction)
		}
	}
	return 0
}

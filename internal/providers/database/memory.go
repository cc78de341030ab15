// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"slices"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
)

// SelectRecords applies a filter, a sort and a window in memory to live
// records given in creation order, for stores that cannot query payloads.
// Records with equal sort values keep their creation order.
func SelectRecords(records []Record, arg ListRecordsParams) ([]Record, int64) {
	matches := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Deleted && arg.Filter.Matches(r.Payload) {
			matches = append(matches, r)
		}
	}

	if len(arg.Sort) > 0 {
		slices.SortStableFunc(matches, func(a, b Record) int {
			return engine.ComparePayloads(a.Payload, b.Payload, arg.Sort)
		})
	}

	start, end := arg.Window.Bounds(len(matches))
	return matches[start:end], int64(len(matches))
}

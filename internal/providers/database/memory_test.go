// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"testing"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
)

func TestSelectRecords(t *testing.T) {
	records := make([]Record, 0, 6)
	for i := 1; i <= 6; i++ {
		p := engine.NewPayload(1)
		p.Set("n", engine.NumberVal(i))
		records = append(records, Record{Payload: p, Deleted: i == 6})
	}

	window, err := engine.ResolvePage(engine.PageParams{Limit: "2", Page: "2", HasLimit: true, HasPage: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	page, total := SelectRecords(records, ListRecordsParams{Window: window})
	if total != 5 {
		t.Fatalf("Actual total: %d, Expected: 5", total)
	}
	if len(page) != 2 {
		t.Fatalf("Actual page size: %d, Expected: 2", len(page))
	}
	for i, expected := range []engine.NumberVal{3, 4} {
		v, _ := page[i].Payload.Get("n")
		if v != expected {
			t.Fatalf("Actual value: %v, Expected: %v", v, expected)
		}
	}

	page, total = SelectRecords(records, ListRecordsParams{
		Window: engine.Window{Skip: 10, Size: 2, Page: 6},
	})
	if total != 5 || len(page) != 0 {
		t.Fatalf("Unexpected page past the end: %d %d", len(page), total)
	}
}

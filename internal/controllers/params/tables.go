// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package params

type TableURLParams struct {
	TableID string `validate:"required,min=1,max=100"`
}

type RecordsURLParams struct {
	CallerID string `validate:"required,min=1,max=255"`
	TableID  string `validate:"required,min=1,max=100"`
}

type RecordURLParams struct {
	CallerID string `validate:"required,min=1,max=255"`
	TableID  string `validate:"required,min=1,max=100"`
	RecordID string `validate:"required,min=1,max=100"`
}

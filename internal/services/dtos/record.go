// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dtos

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

// RecordDTO renders a record flat, its payload fields following the id and
// timestamps: {"id":...,"createdAt":...,"updatedAt":...,"email":...}.
type RecordDTO struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
	payload   *engine.Payload
}

func (r *RecordDTO) ID() string {
	return r.id
}

func (r *RecordDTO) CreatedAt() time.Time {
	return r.createdAt
}

func (r *RecordDTO) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *RecordDTO) Payload() *engine.Payload {
	return r.payload
}

func (r RecordDTO) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)

	id, err := json.Marshal(r.id)
	if err != nil {
		return nil, err
	}
	buf.Write(id)
	buf.WriteString(`,"createdAt":"`)
	buf.WriteString(r.createdAt.UTC().Format(engine.DateLayout))
	buf.WriteString(`","updatedAt":"`)
	buf.WriteString(r.updatedAt.UTC().Format(engine.DateLayout))
	buf.WriteByte('"')

	if r.payload != nil && r.payload.Len() > 0 {
		buf.WriteByte(',')
		if err := r.payload.WriteJSONFields(&buf); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func MapRecordToDTO(record *database.Record) RecordDTO {
	return RecordDTO{
		id:        record.ID.String(),
		createdAt: record.CreatedAt,
		updatedAt: record.UpdatedAt,
		payload:   record.Payload,
	}
}

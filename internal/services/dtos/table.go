// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dtos

import (
	"time"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

type FieldDTO struct {
	FieldKey     string `json:"fieldKey"`
	FieldName    string `json:"fieldName"`
	DataType     string `json:"dataType"`
	IsRequired   bool   `json:"isRequired"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
}

func mapFieldToDTO(f *engine.Field) FieldDTO {
	return FieldDTO{
		FieldKey:     f.Key,
		FieldName:    f.Name,
		DataType:     f.DataType,
		IsRequired:   f.Required,
		IsPrimaryKey: f.PrimaryKey,
	}
}

type TableDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"ownerId"`
	Fields    []FieldDTO `json:"fields"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	fields []engine.Field
}

// SchemaFields returns the engine view of the table fields.
func (t *TableDTO) SchemaFields() []engine.Field {
	return t.fields
}

func MapTableToDTO(table *database.Table) TableDTO {
	return TableDTO{
		ID:        table.ID.String(),
		Name:      table.Name,
		OwnerID:   table.OwnerID,
		Fields:    utils.MapSlice(table.Fields, mapFieldToDTO),
		CreatedAt: table.CreatedAt,
		UpdatedAt: table.UpdatedAt,
		fields:    table.Fields,
	}
}

type AccessKeysDTO struct {
	TableID  string            `json:"tableId"`
	CallerID string            `json:"callerId"`
	Mode     string            `json:"mode"`
	Header   string            `json:"header"`
	Keys     map[string]string `json:"keys"`
}

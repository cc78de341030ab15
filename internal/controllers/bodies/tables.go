// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bodies

type FieldBody struct {
	FieldKey     string `json:"fieldKey" validate:"required,fieldkey"`
	FieldName    string `json:"fieldName" validate:"required,min=1,max=100"`
	DataType     string `json:"dataType" validate:"required,oneof=string number boolean date"`
	IsRequired   bool   `json:"isRequired"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
}

type TableBody struct {
	Name   string      `json:"name" validate:"required,min=1,max=100"`
	Fields []FieldBody `json:"fields" validate:"required,min=1,max=100,unique=FieldKey,dive"`
}

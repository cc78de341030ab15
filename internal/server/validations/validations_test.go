// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validations

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/tugascript/devlogs/dataforge/internal/controllers/bodies"
)

func TestTableBodyValidation(t *testing.T) {
	validate := NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	validField := bodies.FieldBody{FieldKey: "email", FieldName: "Email", DataType: "string"}

	testCases := []struct {
		name     string
		body     bodies.TableBody
		expField string
		expTag   string
	}{
		{
			name: "Should accept a valid table",
			body: bodies.TableBody{Name: "People", Fields: []bodies.FieldBody{validField}},
		},
		{
			name:     "Should reject a table without fields",
			body:     bodies.TableBody{Name: "People"},
			expField: "TableBody.fields",
			expTag:   "required",
		},
		{
			name: "Should reject a reserved field key",
			body: bodies.TableBody{Name: "People", Fields: []bodies.FieldBody{
				{FieldKey: "createdAt", FieldName: "Created", DataType: "date"},
			}},
			expField: "TableBody.fields[0].fieldKey",
			expTag:   "fieldkey",
		},
		{
			name:     "Should reject duplicated field keys",
			body:     bodies.TableBody{Name: "People", Fields: []bodies.FieldBody{validField, validField}},
			expField: "TableBody.fields",
			expTag:   "unique",
		},
		{
			name: "Should reject an unknown data type",
			body: bodies.TableBody{Name: "People", Fields: []bodies.FieldBody{
				{FieldKey: "id_card", FieldName: "ID card", DataType: "uuid"},
			}},
			expField: "TableBody.fields[0].dataType",
			expTag:   "oneof",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(&tc.body)
			if tc.expTag == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}

			var errs validator.ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("Expected validation errors, got: %v", err)
			}
			if errs[0].Namespace() != tc.expField || errs[0].Tag() != tc.expTag {
				t.Fatalf("Actual: %s %s, Expected: %s %s", errs[0].Namespace(), errs[0].Tag(), tc.expField, tc.expTag)
			}
		})
	}
}

// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validations

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// jsonTagName reports fields by their JSON name in validation errors.
func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func NewValidator(logger *slog.Logger) *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)
	if err := validate.RegisterValidation(fieldKeyValidatorTag, fieldKeyValidator); err != nil {
		logger.Error("Failed to register field key validator", "error", err)
		panic(err)
	}
	return validate
}

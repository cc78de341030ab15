// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validations

import (
	"github.com/go-playground/validator/v10"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
)

const fieldKeyValidatorTag string = "fieldkey"

func fieldKeyValidator(fl validator.FieldLevel) bool {
	input, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return engine.IsValidFieldKey(input)
}

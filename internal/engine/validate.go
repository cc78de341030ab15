// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import "fmt"

type Validation struct {
	OK         bool
	Errors     []string
	Normalized *Payload
}

// ValidateRecord coerces every declared field found in raw. Keys that are not
// declared fields are dropped. Missing fields are skipped unless
// enforceRequired is set and the field is required.
func ValidateRecord(raw map[string]any, fields []Field, enforceRequired bool) Validation {
	errs := make([]string, 0)
	normalized := NewPayload(len(fields))

	for _, f := range fields {
		rv, ok := raw[f.Key]
		if !ok {
			if enforceRequired && f.Required {
				errs = append(errs, fmt.Sprintf("Field '%s' is required.", f.Key))
			}
			continue
		}

		v, err := Coerce(f.Key, f.DataType, rv)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		normalized.Set(f.Key, v)
	}

	return Validation{
		OK:         len(errs) == 0,
		Errors:     errs,
		Normalized: normalized,
	}
}

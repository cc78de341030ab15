// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package exceptions

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(err *ServiceError) ErrorResponse {
	switch err.Code {
	case CodeUnknown, CodeServerError:
		return ErrorResponse{Message: MessageServerError}
	default:
		return ErrorResponse{Message: err.Message}
	}
}

type FieldError struct {
	Param   string `json:"param"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

type ValidationErrorResponse struct {
	Message  string       `json:"message"`
	Location string       `json:"location"`
	Fields   []FieldError `json:"fields,omitempty"`
}

const (
	ValidationResponseLocationBody   string = "body"
	ValidationResponseLocationQuery  string = "query"
	ValidationResponseLocationParams string = "params"
)

const (
	fieldErrTagRequired string = "required"
	fieldErrTagOneOf    string = "oneof"
	fieldErrTagUnique   string = "unique"

	strFieldErrTagMin      string = "min"
	strFieldErrTagMax      string = "max"
	strFieldErrTagUUID     string = "uuid"
	strFieldErrTagFieldKey string = "fieldkey"

	FieldErrMessageInvalid  string = "must be valid"
	FieldErrMessageRequired string = "must be provided"
	FieldErrMessageOneOf    string = "must be one of the allowed values"
	FieldErrMessageUnique   string = "must not contain duplicates"

	StrFieldErrMessageMin      string = "must be longer"
	StrFieldErrMessageMax      string = "must be shorter"
	StrFieldErrMessageUUID     string = "must be a valid UUID"
	StrFieldErrMessageFieldKey string = "must start with a letter or underscore, contain only letters, digits and underscores and not be a reserved name"

	SliceFieldErrMessageMin string = "must have more items"
	SliceFieldErrMessageMax string = "must have fewer items"
)

func selectStrErrMessage(tag string) string {
	switch tag {
	case fieldErrTagRequired:
		return FieldErrMessageRequired
	case strFieldErrTagMin:
		return StrFieldErrMessageMin
	case strFieldErrTagMax:
		return StrFieldErrMessageMax
	case strFieldErrTagUUID:
		return StrFieldErrMessageUUID
	case strFieldErrTagFieldKey:
		return StrFieldErrMessageFieldKey
	case fieldErrTagOneOf:
		return FieldErrMessageOneOf
	default:
		return FieldErrMessageInvalid
	}
}

func selectSliceErrMessage(tag string) string {
	switch tag {
	case fieldErrTagRequired:
		return FieldErrMessageRequired
	case strFieldErrTagMin:
		return SliceFieldErrMessageMin
	case strFieldErrTagMax:
		return SliceFieldErrMessageMax
	case fieldErrTagUnique:
		return FieldErrMessageUnique
	default:
		return FieldErrMessageInvalid
	}
}

func buildFieldErrorMessage(tag string, val any) string {
	switch val.(type) {
	case string:
		return selectStrErrMessage(tag)
	case nil:
		if tag == fieldErrTagRequired {
			return FieldErrMessageRequired
		}
		return FieldErrMessageInvalid
	default:
		return selectSliceErrMessage(tag)
	}
}

// paramFromNamespace drops the struct name from a validator namespace such as
// "CreateTableBody.fields[0].fieldKey".
func paramFromNamespace(namespace string) string {
	if _, param, ok := strings.Cut(namespace, "."); ok {
		return param
	}
	return namespace
}

func ValidationErrorResponseFromErr(err *validator.ValidationErrors, location string) ValidationErrorResponse {
	fields := make([]FieldError, len(*err))

	for i, field := range *err {
		value := field.Value()
		fields[i] = FieldError{
			Value:   value,
			Param:   paramFromNamespace(field.Namespace()),
			Message: buildFieldErrorMessage(field.Tag(), value),
		}
	}

	return ValidationErrorResponse{
		Message:  MessageInvalidBody,
		Fields:   fields,
		Location: location,
	}
}

func NewValidationErrorResponse(location string, fields []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse{
		Message:  MessageInvalidBody,
		Fields:   fields,
		Location: location,
	}
}

func NewEmptyValidationErrorResponse(location string) ValidationErrorResponse {
	return ValidationErrorResponse{
		Message:  MessageInvalidBody,
		Location: location,
	}
}

func NewRequestErrorStatus(code string) int {
	switch code {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeMethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	case CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

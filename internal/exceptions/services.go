// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package exceptions

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
)

const (
	CodeValidation       string = "VALIDATION"
	CodeConflict         string = "CONFLICT"
	CodeNotFound         string = "NOT_FOUND"
	CodeUnknown          string = "UNKNOWN"
	CodeServerError      string = "SERVER_ERROR"
	CodeUnauthorized     string = "UNAUTHORIZED"
	CodeMethodNotAllowed string = "METHOD_NOT_ALLOWED"
)

const (
	MessageDuplicateKey     string = "Resource already exists."
	MessageNotFound         string = "Resource not found."
	MessageTableNotFound    string = "Table not found."
	MessageRecordNotFound   string = "Record not found."
	MessageTableNameTaken   string = "A table with this name already exists."
	MessageServerError      string = "Server error."
	MessageUnauthorized     string = "Unauthorized"
	MessageInvalidAPIKey    string = "Unauthorized: Invalid API key."
	MessageMethodNotAllowed string = "Method not allowed."
	MessageInvalidBody      string = "Invalid data in request body."
)

type ServiceError struct {
	Code    string
	Message string
}

func NewError(code string, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

func NewNotFoundError() *ServiceError {
	return NewError(CodeNotFound, MessageNotFound)
}

func NewTableNotFoundError() *ServiceError {
	return NewError(CodeNotFound, MessageTableNotFound)
}

func NewRecordNotFoundError() *ServiceError {
	return NewError(CodeNotFound, MessageRecordNotFound)
}

func NewValidationError(message string) *ServiceError {
	return NewError(CodeValidation, message)
}

func NewServerError() *ServiceError {
	return NewError(CodeServerError, MessageServerError)
}

func NewConflictError(message string) *ServiceError {
	return NewError(CodeConflict, message)
}

func NewUnauthorizedError() *ServiceError {
	return NewError(CodeUnauthorized, MessageUnauthorized)
}

func NewInvalidAPIKeyError() *ServiceError {
	return NewError(CodeUnauthorized, MessageInvalidAPIKey)
}

func NewMethodNotAllowedError() *ServiceError {
	return NewError(CodeMethodNotAllowed, MessageMethodNotAllowed)
}

func (e *ServiceError) Error() string {
	return e.Message
}

func FromDBError(err error) *ServiceError {
	if errors.Is(err, database.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
		return NewNotFoundError()
	}
	if errors.Is(err, database.ErrTableNameTaken) {
		return NewConflictError(MessageTableNameTaken)
	}

	var uniqueErr *database.UniqueViolationError
	if errors.As(err, &uniqueErr) {
		return NewValidationError(uniqueErr.Error())
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return NewConflictError(MessageDuplicateKey)
		case "23503", "22P02":
			return NewNotFoundError()
		default:
			return NewError(CodeUnknown, MessageServerError)
		}
	}

	return NewError(CodeUnknown, MessageServerError)
}

// WithNotFoundMessage swaps the generic not found message for one naming the
// resource the lookup failed on.
func (e *ServiceError) WithNotFoundMessage(message string) *ServiceError {
	if e.Code != CodeNotFound {
		return e
	}
	return NewError(CodeNotFound, message)
}

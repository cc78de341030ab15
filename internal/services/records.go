// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tugascript/devlogs/dataforge/internal/engine"
	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/providers/database"
	"github.com/tugascript/devlogs/dataforge/internal/services/dtos"
	"github.com/tugascript/devlogs/dataforge/internal/utils"
)

const (
	recordsLocation string = "records"

	MessageRecordFound   string = "Record details retrieved successfully."
	MessageRecordUpdated string = "Record updated successfully."
	MessageRecordDeleted string = "Record deleted successfully."
)

func listMessage(tableName string) string {
	return fmt.Sprintf("Get %s list successfully", tableName)
}

func createdMessage(tableName string) string {
	return fmt.Sprintf("Successfully created record in %s.", tableName)
}

func (s *Services) resolveCallerTable(
	ctx context.Context,
	logger *slog.Logger,
	requestID, callerID, tableID string,
) (database.Table, *exceptions.ServiceError) {
	return s.resolveTable(ctx, logger, GetTableOptions{
		RequestID: requestID,
		OwnerID:   callerID,
		TableID:   tableID,
	})
}

func (s *Services) resolveRecord(
	ctx context.Context,
	logger *slog.Logger,
	table *database.Table,
	recordID string,
) (database.Record, *exceptions.ServiceError) {
	id, serviceErr := parseID(recordID, exceptions.NewRecordNotFoundError)
	if serviceErr != nil {
		logger.InfoContext(ctx, "Malformed record id")
		return database.Record{}, serviceErr
	}

	record, err := s.database.FindRecord(ctx, database.FindRecordParams{
		TableID:  table.ID,
		RecordID: id,
		Fields:   table.Fields,
	})
	if err != nil {
		return database.Record{}, s.recordError(ctx, logger, err, "Failed to find record")
	}

	return record, nil
}

// recordError maps a store failure of a record scoped operation.
func (s *Services) recordError(ctx context.Context, logger *slog.Logger, err error, msg string) *exceptions.ServiceError {
	serviceErr := exceptions.FromDBError(err)
	switch serviceErr.Code {
	case exceptions.CodeNotFound:
		logger.InfoContext(ctx, "Record not found")
		return exceptions.NewRecordNotFoundError()
	case exceptions.CodeValidation:
		logger.InfoContext(ctx, "Record rejected by the store", "error", err)
		return serviceErr
	default:
		logger.ErrorContext(ctx, msg, "error", err)
		return serviceErr
	}
}

type ListRecordsOptions struct {
	RequestID string
	CallerID  string
	TableID   string
	Query     map[string]string
}

// ListRecords reads a window of the live records of a table matching the
// filter, sort and pagination parameters of the query.
func (s *Services) ListRecords(
	ctx context.Context,
	opts ListRecordsOptions,
) (dtos.ListResponseDTO[dtos.RecordDTO], *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, recordsLocation, "ListRecords").With(
		"callerId", opts.CallerID,
		"tableId", opts.TableID,
	)
	logger.InfoContext(ctx, "Listing records...")

	table, serviceErr := s.resolveCallerTable(ctx, logger, opts.RequestID, opts.CallerID, opts.TableID)
	if serviceErr != nil {
		return dtos.ListResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	filter, errs := engine.BuildFilter(opts.Query, table.Fields, s.queryOpts)
	if len(errs) > 0 {
		logger.InfoContext(ctx, "Invalid filter", "errors", errs)
		return dtos.ListResponseDTO[dtos.RecordDTO]{}, exceptions.NewValidationError(joinErrors(errs))
	}

	var sortKeys []engine.SortKey
	if rawSort := opts.Query[engine.QueryParamSort]; rawSort != "" {
		sortKeys, errs = engine.ParseSort(rawSort, table.Fields, s.queryOpts)
		if len(errs) > 0 {
			logger.InfoContext(ctx, "Invalid sort", "errors", errs)
			return dtos.ListResponseDTO[dtos.RecordDTO]{}, exceptions.NewValidationError(joinErrors(errs))
		}
	}

	limit, hasLimit := opts.Query[engine.QueryParamLimit]
	page, hasPage := opts.Query[engine.QueryParamPage]
	window, err := engine.ResolvePage(engine.PageParams{
		Limit:    limit,
		Page:     page,
		HasLimit: hasLimit,
		HasPage:  hasPage,
	})
	if err != nil {
		logger.InfoContext(ctx, "Invalid pagination", "error", err)
		return dtos.ListResponseDTO[dtos.RecordDTO]{}, exceptions.NewValidationError(err.Error())
	}

	records, total, err := s.database.ListRecords(ctx, database.ListRecordsParams{
		TableID: table.ID,
		Fields:  table.Fields,
		Filter:  filter,
		Sort:    sortKeys,
		Window:  window,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list records", "error", err)
		return dtos.ListResponseDTO[dtos.RecordDTO]{}, exceptions.FromDBError(err)
	}

	logger.InfoContext(ctx, "Records listed successfully", "count", len(records), "total", total)
	return dtos.NewListResponseDTO(
		utils.MapSlice(records, dtos.MapRecordToDTO),
		listMessage(table.Name),
		window.Page,
		total,
	), nil
}

type CreateRecordOptions struct {
	RequestID string
	CallerID  string
	TableID   string
	Body      map[string]any
}

func (s *Services) CreateRecord(
	ctx context.Context,
	opts CreateRecordOptions,
) (dtos.ResponseDTO[dtos.RecordDTO], *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, recordsLocation, "CreateRecord").With(
		"callerId", opts.CallerID,
		"tableId", opts.TableID,
	)
	logger.InfoContext(ctx, "Creating record...")

	table, serviceErr := s.resolveCallerTable(ctx, logger, opts.RequestID, opts.CallerID, opts.TableID)
	if serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	payload, serviceErr := s.validatePayload(ctx, logger, opts.Body, table.Fields, true)
	if serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	if serviceErr := s.checkUniqueness(ctx, logger, checkUniquenessOptions{
		tableID: table.ID,
		fields:  table.Fields,
		payload: payload,
	}); serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	record, err := s.database.CreateRecord(ctx, database.CreateRecordParams{
		TableID: table.ID,
		OwnerID: table.OwnerID,
		Fields:  table.Fields,
		Payload: payload,
	})
	if err != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, s.recordError(ctx, logger, err, "Failed to create record")
	}

	logger.InfoContext(ctx, "Record created successfully", "recordId", record.ID)
	return dtos.NewResponseDTO(dtos.MapRecordToDTO(&record), createdMessage(table.Name)), nil
}

func (s *Services) validatePayload(
	ctx context.Context,
	logger *slog.Logger,
	body map[string]any,
	fields []engine.Field,
	enforceRequired bool,
) (*engine.Payload, *exceptions.ServiceError) {
	if body == nil {
		logger.InfoContext(ctx, "Missing request body")
		return nil, exceptions.NewValidationError(exceptions.MessageInvalidBody)
	}

	validation := engine.ValidateRecord(body, fields, enforceRequired)
	if !validation.OK {
		logger.InfoContext(ctx, "Invalid record data", "errors", validation.Errors)
		return nil, exceptions.NewValidationError(joinErrors(validation.Errors))
	}

	return validation.Normalized, nil
}

type GetRecordOptions struct {
	RequestID string
	CallerID  string
	TableID   string
	RecordID  string
}

func (s *Services) GetRecord(
	ctx context.Context,
	opts GetRecordOptions,
) (dtos.ResponseDTO[dtos.RecordDTO], *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, recordsLocation, "GetRecord").With(
		"callerId", opts.CallerID,
		"tableId", opts.TableID,
		"recordId", opts.RecordID,
	)
	logger.InfoContext(ctx, "Getting record...")

	table, serviceErr := s.resolveCallerTable(ctx, logger, opts.RequestID, opts.CallerID, opts.TableID)
	if serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	record, serviceErr := s.resolveRecord(ctx, logger, &table, opts.RecordID)
	if serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	logger.InfoContext(ctx, "Record found")
	return dtos.NewResponseDTO(dtos.MapRecordToDTO(&record), MessageRecordFound), nil
}

type UpdateRecordOptions struct {
	RequestID string
	CallerID  string
	TableID   string
	RecordID  string
	Body      map[string]any

	// Partial merges the supplied fields into the stored payload and does
	// not require the required fields.
	Partial bool
}

func (s *Services) UpdateRecord(
	ctx context.Context,
	opts UpdateRecordOptions,
) (dtos.ResponseDTO[dtos.RecordDTO], *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, recordsLocation, "UpdateRecord").With(
		"callerId", opts.CallerID,
		"tableId", opts.TableID,
		"recordId", opts.RecordID,
		"partial", opts.Partial,
	)
	logger.InfoContext(ctx, "Updating record...")

	table, serviceErr := s.resolveCallerTable(ctx, logger, opts.RequestID, opts.CallerID, opts.TableID)
	if serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	record, serviceErr := s.resolveRecord(ctx, logger, &table, opts.RecordID)
	if serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	payload, serviceErr := s.validatePayload(ctx, logger, opts.Body, table.Fields, !opts.Partial)
	if serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	if serviceErr := s.checkUniqueness(ctx, logger, checkUniquenessOptions{
		tableID:         table.ID,
		fields:          table.Fields,
		payload:         payload,
		excludeRecordID: record.ID,
	}); serviceErr != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, serviceErr
	}

	record, err := s.database.UpdateRecord(ctx, database.UpdateRecordParams{
		TableID:  table.ID,
		RecordID: record.ID,
		Fields:   table.Fields,
		Payload:  payload,
		Merge:    opts.Partial,
	})
	if err != nil {
		return dtos.ResponseDTO[dtos.RecordDTO]{}, s.recordError(ctx, logger, err, "Failed to update record")
	}

	logger.InfoContext(ctx, "Record updated successfully")
	return dtos.NewResponseDTO(dtos.MapRecordToDTO(&record), MessageRecordUpdated), nil
}

type DeleteRecordOptions struct {
	RequestID string
	CallerID  string
	TableID   string
	RecordID  string
}

// DeleteRecord soft deletes a record, releasing its unique values.
func (s *Services) DeleteRecord(
	ctx context.Context,
	opts DeleteRecordOptions,
) (dtos.ResponseDTO[*dtos.RecordDTO], *exceptions.ServiceError) {
	logger := s.buildLogger(opts.RequestID, recordsLocation, "DeleteRecord").With(
		"callerId", opts.CallerID,
		"tableId", opts.TableID,
		"recordId", opts.RecordID,
	)
	logger.InfoContext(ctx, "Deleting record...")

	table, serviceErr := s.resolveCallerTable(ctx, logger, opts.RequestID, opts.CallerID, opts.TableID)
	if serviceErr != nil {
		return dtos.ResponseDTO[*dtos.RecordDTO]{}, serviceErr
	}

	record, serviceErr := s.resolveRecord(ctx, logger, &table, opts.RecordID)
	if serviceErr != nil {
		return dtos.ResponseDTO[*dtos.RecordDTO]{}, serviceErr
	}

	if err := s.database.DeleteRecord(ctx, database.DeleteRecordParams{
		TableID:  table.ID,
		RecordID: record.ID,
		Fields:   table.Fields,
	}); err != nil {
		return dtos.ResponseDTO[*dtos.RecordDTO]{}, s.recordError(ctx, logger, err, "Failed to delete record")
	}

	logger.InfoContext(ctx, "Record deleted successfully")
	return dtos.NewResponseDTO[*dtos.RecordDTO](nil, MessageRecordDeleted), nil
}

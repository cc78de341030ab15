// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tugascript/devlogs/dataforge/internal/controllers/params"
	"github.com/tugascript/devlogs/dataforge/internal/exceptions"
	"github.com/tugascript/devlogs/dataforge/internal/services"
)

const recordsLocation string = "records"

var (
	recordsAllowedMethods = []string{fiber.MethodGet, fiber.MethodPost}
	recordAllowedMethods  = []string{fiber.MethodGet, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete}
)

func (c *Controllers) ListRecords(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, recordsLocation, "ListRecords")
	logRequest(logger, ctx)

	urlParams := params.RecordsURLParams{
		CallerID: ctx.Params("callerID"),
		TableID:  ctx.Params("tableID"),
	}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	listDTO, serviceErr := c.services.ListRecords(ctx.UserContext(), services.ListRecordsOptions{
		RequestID: requestID,
		CallerID:  urlParams.CallerID,
		TableID:   urlParams.TableID,
		Query:     ctx.Queries(),
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(&listDTO)
}

func (c *Controllers) CreateRecord(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, recordsLocation, "CreateRecord")
	logRequest(logger, ctx)

	urlParams := params.RecordsURLParams{
		CallerID: ctx.Params("callerID"),
		TableID:  ctx.Params("tableID"),
	}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	body, err := parseRecordBody(ctx)
	if err != nil {
		logger.WarnContext(ctx.UserContext(), "Failed to parse record body", "error", err)
		return serviceErrorResponse(logger, ctx, exceptions.NewValidationError(exceptions.MessageInvalidBody))
	}

	recordDTO, serviceErr := c.services.CreateRecord(ctx.UserContext(), services.CreateRecordOptions{
		RequestID: requestID,
		CallerID:  urlParams.CallerID,
		TableID:   urlParams.TableID,
		Body:      body,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusCreated)
	return ctx.Status(fiber.StatusCreated).JSON(&recordDTO)
}

func (c *Controllers) GetRecord(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, recordsLocation, "GetRecord")
	logRequest(logger, ctx)

	urlParams := params.RecordURLParams{
		CallerID: ctx.Params("callerID"),
		TableID:  ctx.Params("tableID"),
		RecordID: ctx.Params("recordID"),
	}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	recordDTO, serviceErr := c.services.GetRecord(ctx.UserContext(), services.GetRecordOptions{
		RequestID: requestID,
		CallerID:  urlParams.CallerID,
		TableID:   urlParams.TableID,
		RecordID:  urlParams.RecordID,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(&recordDTO)
}

func (c *Controllers) updateRecord(ctx *fiber.Ctx, method string, partial bool) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, recordsLocation, method)
	logRequest(logger, ctx)

	urlParams := params.RecordURLParams{
		CallerID: ctx.Params("callerID"),
		TableID:  ctx.Params("tableID"),
		RecordID: ctx.Params("recordID"),
	}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	body, err := parseRecordBody(ctx)
	if err != nil {
		logger.WarnContext(ctx.UserContext(), "Failed to parse record body", "error", err)
		return serviceErrorResponse(logger, ctx, exceptions.NewValidationError(exceptions.MessageInvalidBody))
	}

	recordDTO, serviceErr := c.services.UpdateRecord(ctx.UserContext(), services.UpdateRecordOptions{
		RequestID: requestID,
		CallerID:  urlParams.CallerID,
		TableID:   urlParams.TableID,
		RecordID:  urlParams.RecordID,
		Body:      body,
		Partial:   partial,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(&recordDTO)
}

func (c *Controllers) UpdateRecord(ctx *fiber.Ctx) error {
	return c.updateRecord(ctx, "UpdateRecord", false)
}

func (c *Controllers) PatchRecord(ctx *fiber.Ctx) error {
	return c.updateRecord(ctx, "PatchRecord", true)
}

func (c *Controllers) DeleteRecord(ctx *fiber.Ctx) error {
	requestID := getRequestID(ctx)
	logger := c.buildLogger(requestID, recordsLocation, "DeleteRecord")
	logRequest(logger, ctx)

	urlParams := params.RecordURLParams{
		CallerID: ctx.Params("callerID"),
		TableID:  ctx.Params("tableID"),
		RecordID: ctx.Params("recordID"),
	}
	if err := c.validate.StructCtx(ctx.UserContext(), &urlParams); err != nil {
		return validateURLParamsErrorResponse(logger, ctx, err)
	}

	resDTO, serviceErr := c.services.DeleteRecord(ctx.UserContext(), services.DeleteRecordOptions{
		RequestID: requestID,
		CallerID:  urlParams.CallerID,
		TableID:   urlParams.TableID,
		RecordID:  urlParams.RecordID,
	})
	if serviceErr != nil {
		return serviceErrorResponse(logger, ctx, serviceErr)
	}

	logResponse(logger, ctx, fiber.StatusOK)
	return ctx.Status(fiber.StatusOK).JSON(&resDTO)
}

func (c *Controllers) RecordsMethodNotAllowed(ctx *fiber.Ctx) error {
	logger := c.buildLogger(getRequestID(ctx), recordsLocation, "RecordsMethodNotAllowed")
	logRequest(logger, ctx)
	return methodNotAllowedResponse(logger, ctx, recordsAllowedMethods)
}

func (c *Controllers) RecordMethodNotAllowed(ctx *fiber.Ctx) error {
	logger := c.buildLogger(getRequestID(ctx), recordsLocation, "RecordMethodNotAllowed")
	logRequest(logger, ctx)
	return methodNotAllowedResponse(logger, ctx, recordAllowedMethods)
}

// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dtos

// ResponseDTO is the envelope of every successful mutation or detail read.
type ResponseDTO[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

func NewResponseDTO[T any](data T, message string) ResponseDTO[T] {
	return ResponseDTO[T]{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// ListResponseDTO adds the current page and the total count of matches to the
// envelope of list reads.
type ListResponseDTO[T any] struct {
	Success bool   `json:"success"`
	Data    []T    `json:"data"`
	Message string `json:"message"`
	Page    int    `json:"page"`
	Total   int64  `json:"total"`
}

func NewListResponseDTO[T any](data []T, message string, page int, total int64) ListResponseDTO[T] {
	if data == nil {
		data = make([]T, 0)
	}

	return ListResponseDTO[T]{
		Success: true,
		Data:    data,
		Message: message,
		Page:    page,
		Total:   total,
	}
}

type MessageDTO struct {
	Message string `json:"message"`
}

func NewMessageDTO(msg string) MessageDTO {
	return MessageDTO{Message: msg}
}

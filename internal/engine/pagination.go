// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrInvalidLimit     = errors.New("Invalid limit value.")
	ErrInvalidPage      = errors.New("Invalid page value.")
	ErrPageWithoutLimit = errors.New("Page parameter provided without limit.")
)

type PageParams struct {
	Limit    string
	Page     string
	HasLimit bool
	HasPage  bool
}

// Window selects a slice of a result set. A zero Size selects everything.
type Window struct {
	Skip int
	Size int
	Page int
}

func (w Window) Bounded() bool {
	return w.Size > 0
}

// Bounds clamps the window to a result set of n items.
func (w Window) Bounds(n int) (int, int) {
	if !w.Bounded() {
		return 0, n
	}

	start := min(max(w.Skip, 0), n)
	end := start + min(w.Size, n-start)
	return start, end
}

func parsePositiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ResolvePage turns limit and page parameters into a window. Without a limit
// the whole result set is returned as page 1.
func ResolvePage(params PageParams) (Window, error) {
	if !params.HasLimit {
		if params.HasPage {
			return Window{}, ErrPageWithoutLimit
		}
		return Window{Page: 1}, nil
	}

	limit, ok := parsePositiveInt(params.Limit)
	if !ok {
		return Window{}, ErrInvalidLimit
	}

	page := 1
	if params.HasPage {
		if page, ok = parsePositiveInt(params.Page); !ok {
			return Window{}, ErrInvalidPage
		}
	}
	// The skip must fit in an int for every store.
	if page-1 > math.MaxInt/limit {
		return Window{}, ErrInvalidPage
	}

	return Window{
		Skip: (page - 1) * limit,
		Size: limit,
		Page: page,
	}, nil
}

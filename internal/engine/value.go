// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"cmp"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is fixed width so that formatted dates sort chronologically.
const DateLayout string = "2006-01-02T15:04:05.000Z07:00"

type Kind uint8

const (
	KindRaw Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

// Value is a typed record value. The coercer is the only place where untyped
// input becomes a Value.
type Value interface {
	Kind() Kind
	// Interface returns the JSON representation of the value.
	Interface() any
	// Key returns a canonical string, equal for equal values of the same kind.
	Key() string
	sealed()
}

type StringVal string

func (StringVal) Kind() Kind       { return KindString }
func (v StringVal) Interface() any { return string(v) }
func (v StringVal) Key() string    { return "s:" + string(v) }
func (StringVal) sealed()          {}
func (v StringVal) String() string { return string(v) }

type NumberVal float64

func (NumberVal) Kind() Kind       { return KindNumber }
func (v NumberVal) Interface() any { return float64(v) }
func (v NumberVal) Key() string    { return "n:" + v.String() }
func (NumberVal) sealed()          {}
func (v NumberVal) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

type BoolVal bool

func (BoolVal) Kind() Kind       { return KindBool }
func (v BoolVal) Interface() any { return bool(v) }
func (v BoolVal) Key() string    { return "b:" + strconv.FormatBool(bool(v)) }
func (BoolVal) sealed()          {}

type DateVal struct {
	t time.Time
}

// NewDateVal truncates to milliseconds, the precision dates are stored with.
func NewDateVal(t time.Time) DateVal {
	return DateVal{t: t.UTC().Truncate(time.Millisecond)}
}

func (DateVal) Kind() Kind        { return KindDate }
func (v DateVal) Interface() any  { return v.String() }
func (v DateVal) Key() string     { return "d:" + v.String() }
func (DateVal) sealed()           {}
func (v DateVal) Time() time.Time { return v.t }
func (v DateVal) String() string  { return v.t.Format(DateLayout) }

// RawVal carries values of data types the engine does not interpret.
type RawVal struct {
	V any
}

func (RawVal) Kind() Kind       { return KindRaw }
func (v RawVal) Interface() any { return v.V }
func (v RawVal) Key() string    { return fmt.Sprintf("r:%v", v.V) }
func (RawVal) sealed()          {}

func kindRank(k Kind) int {
	switch k {
	case KindString:
		return 1
	case KindDate:
		return 2
	case KindNumber:
		return 3
	case KindBool:
		return 4
	default:
		return 5
	}
}

// CompareValues orders values of the same kind naturally. Values of different
// kinds are ordered string < date < number < boolean < raw, and a missing value
// (nil) sorts before everything.
func CompareValues(a, b Value) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if a.Kind() != b.Kind() {
		return cmp.Compare(kindRank(a.Kind()), kindRank(b.Kind()))
	}

	switch av := a.(type) {
	case StringVal:
		return cmp.Compare(string(av), string(b.(StringVal)))
	case NumberVal:
		return cmp.Compare(float64(av), float64(b.(NumberVal)))
	case BoolVal:
		bv := b.(BoolVal)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		default:
			return 1
		}
	case DateVal:
		return av.t.Compare(b.(DateVal).t)
	default:
		return cmp.Compare(a.Key(), b.Key())
	}
}

func EqualValues(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && CompareValues(a, b) == 0
}

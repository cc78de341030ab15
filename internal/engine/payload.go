// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package engine

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Payload is an insertion ordered map from field key to typed value.
// The zero value is an empty payload ready to use.
type Payload struct {
	keys   []string
	values map[string]Value
}

func NewPayload(capacity int) *Payload {
	return &Payload{
		keys:   make([]string, 0, capacity),
		values: make(map[string]Value, capacity),
	}
}

func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *Payload) Keys() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.keys)
}

func (p *Payload) Get(key string) (Value, bool) {
	if p == nil || p.values == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *Payload) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set adds or replaces a value, keeping the position of an existing key.
func (p *Payload) Set(key string, value Value) {
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *Payload) Delete(key string) {
	if p == nil || p.values == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	p.keys = slices.DeleteFunc(p.keys, func(k string) bool { return k == key })
}

func (p *Payload) Range(fn func(key string, value Value) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

func (p *Payload) Clone() *Payload {
	clone := NewPayload(p.Len())
	p.Range(func(k string, v Value) bool {
		clone.Set(k, v)
		return true
	})
	return clone
}

// Merge returns a copy of p with the keys of patch set on top of it.
func (p *Payload) Merge(patch *Payload) *Payload {
	merged := p.Clone()
	patch.Range(func(k string, v Value) bool {
		merged.Set(k, v)
		return true
	})
	return merged
}

// Map returns the JSON representation of every value keyed by field key.
func (p *Payload) Map() map[string]any {
	m := make(map[string]any, p.Len())
	p.Range(func(k string, v Value) bool {
		m[k] = v.Interface()
		return true
	})
	return m
}

// WriteJSONFields writes the payload entries as `"key":value` pairs separated
// by commas, without the enclosing braces.
func (p *Payload) WriteJSONFields(buf *bytes.Buffer) error {
	first := true
	var err error
	p.Range(func(k string, v Value) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var kb, vb []byte
		if kb, err = json.Marshal(k); err != nil {
			return false
		}
		if vb, err = json.Marshal(v.Interface()); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	return err
}

func (p *Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := p.WriteJSONFields(&buf); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodePayload rebuilds a typed payload from its stored JSON form. Keys follow
// the schema field order, values that no longer match their field type and
// keys of removed fields are kept as raw values.
func DecodePayload(raw map[string]any, fields []Field) *Payload {
	payload := NewPayload(len(raw))
	for _, f := range fields {
		rv, ok := raw[f.Key]
		if !ok {
			continue
		}
		v, err := Coerce(f.Key, f.DataType, rv)
		if err != nil {
			v = RawVal{V: rv}
		}
		payload.Set(f.Key, v)
	}

	extra := make([]string, 0)
	for k := range raw {
		if !payload.Has(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		payload.Set(k, RawVal{V: raw[k]})
	}

	return payload
}

// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package builtin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/open2b/enjoy/runtime"

	"github.com/shopspring/decimal"
)

// MarshalJSON returns the JSON encoding of v. Maps are encoded as objects
// with the keys in the order of the map.
func MarshalJSON(v runtime.Value) (string, error) {
	var b strings.Builder
	if err := marshalJSON(&b, v); err != nil {
		return "", fmt.Errorf("marshalJSON: %w", err)
	}
	return b.String(), nil
}

func marshalJSON(b *strings.Builder, v runtime.Value) error {
	switch v.Kind() {
	case runtime.KindNull:
		b.WriteString("null")
	case runtime.KindBoolean, runtime.KindNumber:
		b.WriteString(v.String())
	case runtime.KindText:
		writeJSONString(b, v.Text())
	case runtime.KindList:
		b.WriteByte('[')
		for i, e := range v.List() {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := marshalJSON(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case runtime.KindMap:
		b.WriteByte('{')
		var err error
		i := 0
		v.Map().Range(func(k string, e runtime.Value) bool {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, k)
			b.WriteByte(':')
			err = marshalJSON(b, e)
			i++
			return err == nil
		})
		if err != nil {
			return err
		}
		b.WriteByte('}')
	case runtime.KindCallable:
		return errors.New("unsupported value: callable")
	}
	return nil
}

func writeJSONString(b *strings.Builder, s string) {
	data, _ := json.Marshal(s)
	b.Write(data)
}

// UnmarshalJSON parses the JSON-encoded data and returns its value. Objects
// become maps with the keys in the order in which they appear in data.
func UnmarshalJSON(data string) (runtime.Value, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	v, err := unmarshalJSON(dec)
	if err == nil {
		if _, e := dec.Token(); e != io.EOF {
			err = errors.New("invalid character after top-level value")
		}
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return runtime.Null, fmt.Errorf("unmarshalJSON: %w", err)
	}
	return v, nil
}

func unmarshalJSON(dec *json.Decoder) (runtime.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return runtime.Null, err
	}
	switch tok := tok.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.Bool(tok), nil
	case json.Number:
		n, err := decimal.NewFromString(tok.String())
		if err != nil {
			return runtime.Null, err
		}
		return runtime.Number(n), nil
	case string:
		return runtime.Text(tok), nil
	case json.Delim:
		switch tok {
		case '[':
			elements := []runtime.Value{}
			for dec.More() {
				e, err := unmarshalJSON(dec)
				if err != nil {
					return runtime.Null, err
				}
				elements = append(elements, e)
			}
			if _, err := dec.Token(); err != nil {
				return runtime.Null, err
			}
			return runtime.List(elements), nil
		case '{':
			m := runtime.NewMap(0)
			for dec.More() {
				k, err := dec.Token()
				if err != nil {
					return runtime.Null, err
				}
				e, err := unmarshalJSON(dec)
				if err != nil {
					return runtime.Null, err
				}
				m.Set(k.(string), e)
			}
			if _, err := dec.Token(); err != nil {
				return runtime.Null, err
			}
			return runtime.MapOf(m), nil
		}
	}
	return runtime.Null, fmt.Errorf("unexpected token %v", tok)
}

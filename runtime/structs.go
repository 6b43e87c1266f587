// Copyright (c) 2026 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// fieldName represents the name of a field in a struct.
type fieldName struct {
	name  string
	index []int
}

// structs maintains the association between the field names of a struct,
// as they are called in the template, and the field index in the struct.
var structs = struct {
	fields map[reflect.Type][]fieldName
	sync.RWMutex
}{map[reflect.Type][]fieldName{}, sync.RWMutex{}}

// getStructFields returns the fields of the struct type typ in declaration
// order. The fields of embedded structs follow the fields of the embedding
// struct.
func getStructFields(typ reflect.Type) ([]fieldName, error) {
	structs.RLock()
	fields, ok := structs.fields[typ]
	structs.RUnlock()
	if ok {
		return fields, nil
	}
	fields, err := structFields(typ, nil)
	if err != nil {
		return nil, err
	}
	structs.Lock()
	structs.fields[typ] = fields
	structs.Unlock()
	return fields, nil
}

// structFields returns the fields of typ. index is the index of typ in the
// outermost struct.
func structFields(typ reflect.Type, index []int) ([]fieldName, error) {
	n := typ.NumField()
	fields := make([]fieldName, 0, n)
	var embedded []reflect.StructField
	for i := 0; i < n; i++ {
		field := typ.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			embedded = append(embedded, field)
			continue
		}
		if field.PkgPath != "" {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("enjoy"); ok {
			if tag == "-" {
				continue
			}
			name = parseVarTag(tag)
			if name == "" {
				return nil, fmt.Errorf("invalid tag of field %q", field.Name)
			}
		}
		fields = append(fields, fieldName{name, appendIndex(index, i)})
	}
	for _, field := range embedded {
		efields, err := structFields(field.Type, appendIndex(index, field.Index[0]))
		if err != nil {
			return nil, err
		}
	FIELDS:
		for _, ef := range efields {
			for _, f := range fields {
				if f.name == ef.name {
					continue FIELDS
				}
			}
			fields = append(fields, ef)
		}
	}
	return fields, nil
}

func appendIndex(index []int, i int) []int {
	s := make([]int, len(index)+1)
	copy(s, index)
	s[len(index)] = i
	return s
}

// parseVarTag parses the tag of a field of a struct and returns the name.
func parseVarTag(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return ""
	}
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ""
		}
	}
	return name
}

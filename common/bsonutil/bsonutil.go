// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsonutil provides utilities for moving between metadata JSON and
// ordered BSON documents.
package bsonutil

import (
	"math"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ParseExtJSON parses a JSON object, in relaxed or canonical Extended JSON, into
// an ordered document. Nested documents come back as bson.D and arrays as
// bson.A, so key order from the file is preserved all the way down.
func ParseExtJSON(data []byte) (bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, errors.Wrap(err, "error parsing extended JSON")
	}
	return doc, nil
}

// CreateExtJSONString stringifies doc as relaxed Extended JSON. It does not error
// if it's unable to marshal the doc to JSON.
func CreateExtJSONString(doc interface{}) string {
	// by default return "<unable to format document>"" since we don't
	// want to throw an error when formatting informational messages.
	JSONString := "<unable to format document>"
	JSONBytes, err := bson.MarshalExtJSON(doc, false, false)
	if err == nil {
		JSONString = string(JSONBytes)
	}
	return JSONString
}

// Lookup returns the value stored under key at the top level of doc.
func Lookup(doc bson.D, key string) (interface{}, bool) {
	for _, elem := range doc {
		if elem.Key == key {
			return elem.Value, true
		}
	}
	return nil, false
}

// LookupDocument is like Lookup but only succeeds when the value is itself a
// document.
func LookupDocument(doc bson.D, key string) (bson.D, bool) {
	val, ok := Lookup(doc, key)
	if !ok {
		return nil, false
	}
	sub, ok := val.(bson.D)
	return sub, ok
}

// RemoveKey returns doc without any top-level element named key. The input
// slice is not modified.
func RemoveKey(doc bson.D, key string) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, elem := range doc {
		if elem.Key != key {
			out = append(out, elem)
		}
	}
	return out
}

// Bson2Float64 converts any BSON numeric type to float64.
func Bson2Float64(data interface{}) (float64, bool) {
	switch v := data.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case bson.Decimal128:
		if bi, exp, err := v.BigInt(); err == nil {
			f, _ := bi.Float64()
			return f * math.Pow10(exp), true
		}
	}
	return 0, false
}

// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package idx translates stored index descriptors into index specifications
// the server accepts.
package idx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oramatt/extract-schemas/common/bsonutil"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultIDIndexName is the name the server gives the index on _id.
const DefaultIDIndexName = "_id_"

// Key direction markers as they appear in stored descriptors.
const (
	Ascending  = int32(1)
	Descending = int32(-1)
	Geospatial = "2dsphere"
)

// Descriptor fields that describe the source index rather than configure the
// new one.
var strippedOptions = []string{"v", "key", "ns"}

// IndexDocument holds information about a collection's index.
type IndexDocument struct {
	Options bson.M `bson:",inline"`
	Key     bson.D `bson:"key"`
}

// NewIndexDocumentFromD converts a bson.D index descriptor into an
// IndexDocument. The key is translated with TranslateKey and the "v" and "ns"
// fields are dropped.
func NewIndexDocumentFromD(doc bson.D) (*IndexDocument, error) {
	indexDoc := IndexDocument{Options: bson.M{}}

	for _, elem := range doc {
		switch elem.Key {
		case "key":
			val, ok := elem.Value.(bson.D)
			if !ok {
				return nil, fmt.Errorf("index key could not type assert to bson.D")
			}
			key, err := TranslateKey(val)
			if err != nil {
				return nil, err
			}
			indexDoc.Key = key
		default:
			if lo.Contains(strippedOptions, elem.Key) {
				continue
			}
			indexDoc.Options[elem.Key] = elem.Value
		}
	}

	if len(indexDoc.Key) == 0 {
		return nil, fmt.Errorf("index descriptor has no key")
	}

	return &indexDoc, nil
}

// TranslateKey maps stored direction markers onto the values the server
// expects, keeping field order. Numeric 1 and -1 of any BSON type become int32
// Ascending and Descending, "2dsphere" stays Geospatial and any other value
// ("text", "hashed", "2d", other numbers) passes through unchanged.
func TranslateKey(key bson.D) (bson.D, error) {
	out := make(bson.D, 0, len(key))
	for _, elem := range key {
		if elem.Key == "" {
			return nil, errors.New("index key contains an empty field name")
		}
		out = append(out, bson.E{Key: elem.Key, Value: translateDirection(elem.Value)})
	}
	return out, nil
}

func translateDirection(val interface{}) interface{} {
	if s, ok := val.(string); ok {
		if s == Geospatial {
			return Geospatial
		}
		return s
	}
	if f, ok := bsonutil.Bson2Float64(val); ok {
		switch f {
		case 1:
			return Ascending
		case -1:
			return Descending
		}
	}
	return val
}

// Name returns the index name, or the name the server would assign when the
// descriptor has none.
func (id *IndexDocument) Name() string {
	if name, ok := id.Options["name"].(string); ok && name != "" {
		return name
	}
	return DefaultName(id.Key)
}

// DefaultName builds the server's default index name: each field followed by
// its direction, all joined with "_".
func DefaultName(key bson.D) string {
	parts := make([]string, 0, 2*len(key))
	for _, elem := range key {
		parts = append(parts, elem.Key, fmt.Sprintf("%v", elem.Value))
	}
	return strings.Join(parts, "_")
}

// IsDefaultIdIndex indicates if the IndexDocument represents its collection's
// default _id index.
func (id *IndexDocument) IsDefaultIdIndex() bool {
	if name, ok := id.Options["name"].(string); ok && name == DefaultIDIndexName {
		return true
	}

	// Default indexes can't have partial filters.
	if id.Options["partialFilterExpression"] != nil {
		return false
	}

	if len(id.Key) != 1 || id.Key[0].Key != "_id" {
		return false
	}

	// legacy descriptors sometimes store "" as the direction
	if s, ok := id.Key[0].Value.(string); ok {
		return s == ""
	}

	f, ok := bsonutil.Bson2Float64(id.Key[0].Value)
	return ok && f == 1
}

// IsGeospatial reports whether any key field uses a 2dsphere index.
func (id *IndexDocument) IsGeospatial() bool {
	return lo.ContainsBy(id.Key, func(e bson.E) bool {
		return e.Value == Geospatial
	})
}

// CreateIndexSpec returns the document to send in a createIndexes command:
// key, name, then the remaining options sorted by name.
func (id *IndexDocument) CreateIndexSpec() bson.D {
	spec := bson.D{{"key", id.Key}, {"name", id.Name()}}

	keys := lo.Without(lo.Keys(id.Options), "name")
	sort.Strings(keys)
	for _, k := range keys {
		spec = append(spec, bson.E{Key: k, Value: id.Options[k]})
	}
	return spec
}

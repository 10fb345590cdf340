// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package restoremongo

import (
	"github.com/oramatt/extract-schemas/common/options"
	"github.com/oramatt/extract-schemas/mock"
)

const (
	sampleUsers = `{"sample_document": {
		"_id": {"$oid": "5f1a2b3c4d5e6f7a8b9c0d1e"},
		"name": "Ada",
		"age": 36,
		"created": {"$date": "2021-03-04T05:06:07Z"}
	}}`

	schemaUsers = `{
		"schema": {
			"_id": ["ObjectId"],
			"name": ["string"],
			"email": ["string"],
			"age": ["int"],
			"rating": ["double"],
			"location": ["object"],
			"location.type": ["string", "Point"],
			"location.coordinates": ["array"]
		},
		"indexes": [
			{"v": 2, "key": {"_id": 1}, "name": "_id_", "ns": "shop.users"},
			{"v": 2, "key": {"email": 1}, "name": "email_1", "unique": true},
			{"v": 2, "key": {"location": "2dsphere"}, "name": "idx1", "2dsphereIndexVersion": 3}
		]
	}`

	schemaOnlyOrders = `{
		"schema": {
			"_id": ["ObjectId"],
			"total": ["double"],
			"items": ["array"],
			"shipTo": ["object"],
			"shipTo.city": ["string"]
		},
		"indexes": [
			{"key": {"total": -1}, "name": "total_-1"},
			{"key": {"total": -1.0}, "name": "total_desc_fr", "collation": {"locale": "fr"}}
		]
	}`
)

func testOptions(dir string) Options {
	return Options{
		ToolOptions:     options.New("restoremongo", "", "", ""),
		InputOptions:    &InputOptions{},
		OutputOptions:   &OutputOptions{NumSyntheticDocs: 10, Seed: 1, LogDir: "."},
		TargetDirectory: dir,
	}
}

func newTestRestore(dir string) (*RestoreMongo, *mock.Target) {
	target := mock.NewTarget()
	return NewWithTarget(testOptions(dir), target), target
}

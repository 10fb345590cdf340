// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonutil

import (
	"testing"

	"github.com/oramatt/extract-schemas/common/testtype"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestBson2Float64(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	decimalVal, _ := bson.ParseDecimal128("-1")
	tests := []struct {
		In        interface{}
		Expected  float64
		isSuccess bool
	}{
		{int32(1), 1.0, true},
		{int64(1), 1.0, true},
		{1.0, 1.0, true},
		{decimalVal, float64(-1), true},
		{"invalid value", 0, false},
	}

	Convey("Test numerical value conversion", t, func() {
		for _, test := range tests {
			result, ok := Bson2Float64(test.In)
			So(ok, ShouldEqual, test.isSuccess)
			So(result, ShouldEqual, test.Expected)
		}
	})
}

func TestParseExtJSON(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("When parsing metadata JSON", t, func() {
		Convey("key order is preserved at every level", func() {
			doc, err := ParseExtJSON([]byte(`{"z": 1, "a": {"y": -1, "b": "2dsphere"}, "m": [1, 2]}`))
			So(err, ShouldBeNil)
			So(doc[0].Key, ShouldEqual, "z")
			So(doc[1].Key, ShouldEqual, "a")
			So(doc[2].Key, ShouldEqual, "m")

			sub, ok := LookupDocument(doc, "a")
			So(ok, ShouldBeTrue)
			So(sub, ShouldResemble, bson.D{{"y", int32(-1)}, {"b", "2dsphere"}})

			arr, ok := Lookup(doc, "m")
			So(ok, ShouldBeTrue)
			So(arr, ShouldResemble, bson.A{int32(1), int32(2)})
		})

		Convey("extended JSON wrappers become BSON values", func() {
			doc, err := ParseExtJSON([]byte(`{"_id": {"$oid": "5f1a2b3c4d5e6f7a8b9c0d1e"}, "n": {"$numberLong": "12"}}`))
			So(err, ShouldBeNil)
			id, _ := Lookup(doc, "_id")
			So(id, ShouldHaveSameTypeAs, bson.ObjectID{})
			n, _ := Lookup(doc, "n")
			So(n, ShouldEqual, int64(12))
		})

		Convey("malformed input is an error", func() {
			_, err := ParseExtJSON([]byte(`{"a": `))
			So(err, ShouldNotBeNil)
		})

		Convey("a top-level array is an error", func() {
			_, err := ParseExtJSON([]byte(`[1, 2]`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRemoveKey(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("RemoveKey drops only the named top-level key", t, func() {
		doc := bson.D{{"_id", 1}, {"a", bson.D{{"_id", 2}}}, {"b", 3}}
		out := RemoveKey(doc, "_id")
		So(out, ShouldResemble, bson.D{{"a", bson.D{{"_id", 2}}}, {"b", 3}})
		So(len(doc), ShouldEqual, 3)

		_, found := Lookup(out, "_id")
		So(found, ShouldBeFalse)
	})

	Convey("CreateExtJSONString renders relaxed extended JSON", t, func() {
		So(CreateExtJSONString(bson.D{{"a", int32(1)}}), ShouldEqual, `{"a":1}`)
		So(CreateExtJSONString(make(chan int)), ShouldEqual, "<unable to format document>")
	})
}

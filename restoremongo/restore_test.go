// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package restoremongo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/oramatt/extract-schemas/common/bsonutil"
	"github.com/oramatt/extract-schemas/common/idx"
	"github.com/oramatt/extract-schemas/common/testtype"
	"github.com/oramatt/extract-schemas/common/testutil"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestRestoreCollection(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	ctx := context.Background()
	originalID, _ := bson.ObjectIDFromHex("5f1a2b3c4d5e6f7a8b9c0d1e")

	Convey("With a metadata root and an in-memory target", t, func() {
		root := testutil.MetadataDir(t, map[string]string{
			"shop/users/" + SampleDocumentFile:  sampleUsers,
			"shop/users/" + SchemaFile:          schemaUsers,
			"shop/orders/" + SchemaFile:         schemaOnlyOrders,
			"shop/ghost/" + SampleDocumentFile:  `{"sample_document": null}`,
			"shop/broken/" + SampleDocumentFile: `{"sample_document": [}`,
			"shop/broken/" + SchemaFile:         schemaOnlyOrders,
			"shop/bare/" + SchemaFile:           `{"schema": {}, "indexes": [{"key": {"a": 1}, "name": "a_1"}]}`,
		})
		dir := func(coll string) string { return filepath.Join(root, "shop", coll) }
		restore, target := newTestRestore(root)

		Convey("a sample document is inserted once under a new _id", func() {
			result := restore.RestoreCollection(ctx, "shop", "users", dir("users"))
			So(result.Err, ShouldBeNil)
			So(result.Source, ShouldEqual, SourceSample)
			So(result.Inserted, ShouldEqual, 1)
			So(result.Count, ShouldEqual, 1)

			docs := target.C("shop", "users").Docs
			So(len(docs), ShouldEqual, 1)
			id, ok := bsonutil.Lookup(docs[0], "_id")
			So(ok, ShouldBeTrue)
			So(id, ShouldNotEqual, originalID)
			name, _ := bsonutil.Lookup(docs[0], "name")
			So(name, ShouldEqual, "Ada")

			Convey("and indexes come from the schema file", func() {
				So(result.IndexesCreated, ShouldEqual, 2)
				indexes := target.C("shop", "users").Indexes
				So(len(indexes), ShouldEqual, 2)
				So(indexes[0].Name(), ShouldEqual, "email_1")
				So(indexes[0].Options["unique"], ShouldEqual, true)
				So(indexes[1].Name(), ShouldEqual, "idx1")
				So(indexes[1].IsGeospatial(), ShouldBeTrue)
				So(indexes[1].Key, ShouldResemble, bson.D{{"location", idx.Geospatial}})
			})
		})

		Convey("a schema-only folder yields the configured number of synthetic documents", func() {
			result := restore.RestoreCollection(ctx, "shop", "orders", dir("orders"))
			So(result.Err, ShouldBeNil)
			So(result.Source, ShouldEqual, SourceSynthetic)
			So(result.Inserted, ShouldEqual, 10)
			So(result.Count, ShouldEqual, 10)

			seen := map[bson.ObjectID]bool{}
			for _, doc := range target.C("shop", "orders").Docs {
				// the target assigned the only _id, ahead of the generated fields
				So(doc[0].Key, ShouldEqual, "_id")
				So(bsonutil.RemoveKey(doc, "_id"), ShouldHaveLength, len(doc)-1)
				id := doc[0].Value.(bson.ObjectID)
				So(seen[id], ShouldBeFalse)
				seen[id] = true

				shipTo, ok := bsonutil.LookupDocument(doc, "shipTo")
				So(ok, ShouldBeTrue)
				_, ok = bsonutil.Lookup(shipTo, "city")
				So(ok, ShouldBeTrue)
			}

			Convey("and a second index on the same key with its own collation is created too", func() {
				So(result.IndexesCreated, ShouldEqual, 2)
				indexes := target.C("shop", "orders").Indexes
				So(indexes[0].Key, ShouldResemble, bson.D{{"total", idx.Descending}})
				So(indexes[1].Name(), ShouldEqual, "total_desc_fr")
				So(indexes[1].Key, ShouldResemble, bson.D{{"total", idx.Descending}})
				So(indexes[1].Options["collation"], ShouldResemble, bson.D{{"locale", "fr"}})
			})
		})

		Convey("--numSyntheticDocs changes the batch size", func() {
			restore.OutputOptions.NumSyntheticDocs = 3
			result := restore.RestoreCollection(ctx, "shop", "orders", dir("orders"))
			So(result.Inserted, ShouldEqual, 3)
		})

		Convey("a corrupt sample falls back to the schema", func() {
			result := restore.RestoreCollection(ctx, "shop", "broken", dir("broken"))
			So(result.Err, ShouldBeNil)
			So(result.Source, ShouldEqual, SourceSynthetic)
			So(result.Inserted, ShouldEqual, 10)
		})

		Convey("an empty schema yields empty documents and its indexes", func() {
			result := restore.RestoreCollection(ctx, "shop", "bare", dir("bare"))
			So(result.Err, ShouldBeNil)
			So(result.Source, ShouldEqual, SourceSynthetic)
			So(result.Inserted, ShouldEqual, 10)
			So(result.IndexesCreated, ShouldEqual, 1)
			for _, doc := range target.C("shop", "bare").Docs {
				So(bsonutil.RemoveKey(doc, "_id"), ShouldBeEmpty)
			}
		})

		Convey("a folder with nothing usable is skipped", func() {
			result := restore.RestoreCollection(ctx, "shop", "ghost", dir("ghost"))
			So(errors.Is(result.Err, ErrNoUsableMetadata), ShouldBeTrue)
			So(result.Source, ShouldEqual, SourceNone)
			So(result.Restored(), ShouldBeFalse)
			So(target.C("shop", "ghost"), ShouldBeNil)
		})

		Convey("an existing collection is dropped first", func() {
			target.Seed("shop", "users", bson.D{{"stale", true}}, bson.D{{"stale", true}})
			result := restore.RestoreCollection(ctx, "shop", "users", dir("users"))
			So(result.Err, ShouldBeNil)
			So(result.Count, ShouldEqual, 1)
			So(target.Dropped, ShouldResemble, []string{"shop.users"})
		})

		Convey("a failing drop stops the collection", func() {
			target.Seed("shop", "users")
			target.DropErr = fmt.Errorf("not authorized")
			result := restore.RestoreCollection(ctx, "shop", "users", dir("users"))
			So(result.Err, ShouldNotBeNil)
			So(result.Inserted, ShouldEqual, 0)
		})

		Convey("an insert failure is reported and indexes are not built", func() {
			target.InsertErr = fmt.Errorf("document failed validation")
			result := restore.RestoreCollection(ctx, "shop", "orders", dir("orders"))
			So(result.Err, ShouldNotBeNil)
			So(result.Err.Error(), ShouldContainSubstring, "document failed validation")
			So(result.IndexesCreated, ShouldEqual, 0)
		})

		Convey("one failing index doesn't stop the others", func() {
			target.IndexErrs["email_1"] = fmt.Errorf("duplicate key")
			result := restore.RestoreCollection(ctx, "shop", "users", dir("users"))
			So(result.Err, ShouldNotBeNil)
			So(result.Inserted, ShouldEqual, 1)
			So(result.IndexesCreated, ShouldEqual, 1)
			So(target.C("shop", "users").Indexes[0].Name(), ShouldEqual, "idx1")
			So(result.Restored(), ShouldBeFalse)
		})

		Convey("--noIndexRestore skips the recreator", func() {
			restore.OutputOptions.NoIndexRestore = true
			result := restore.RestoreCollection(ctx, "shop", "users", dir("users"))
			So(result.Err, ShouldBeNil)
			So(result.IndexesCreated, ShouldEqual, 0)
			So(target.C("shop", "users").Indexes, ShouldBeEmpty)
		})

		Convey("--dryRun writes nothing", func() {
			opts := testOptions(root)
			opts.OutputOptions.DryRun = true
			dry := NewWithTarget(opts, nil)

			result := dry.RestoreCollection(ctx, "shop", "orders", dir("orders"))
			So(result.Err, ShouldBeNil)
			So(result.Inserted, ShouldEqual, 10)
			So(result.IndexesCreated, ShouldEqual, 2)
			So(result.Count, ShouldEqual, -1)
		})
	})
}

func TestRestoreIndexesWithoutMetadata(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("Missing index metadata is a warning, not an error", t, func() {
		restore, target := newTestRestore(t.TempDir())
		n, err := restore.RestoreIndexesForNamespace(context.Background(), "db", "c", nil)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 0)
		So(target.C("db", "c"), ShouldBeNil)
	})

	Convey("A descriptor without a key counts as a failure", t, func() {
		restore, _ := newTestRestore(t.TempDir())
		n, err := restore.RestoreIndexesForNamespace(context.Background(), "db", "c", &SchemaMetadata{
			Indexes: []bson.D{{{"name", "nokey"}}, {{"key", bson.D{{"a", int32(1)}}}}},
		})
		So(err, ShouldNotBeNil)
		So(n, ShouldEqual, 1)
	})
}

func TestRestoreIndexesSharingAKey(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("Indexes that share a key pattern", t, func() {
		restore, target := newTestRestore(t.TempDir())
		nameKey := bson.D{{"name", int32(1)}}
		skuKey := bson.D{{"sku", int32(1)}}
		meta := &SchemaMetadata{Indexes: []bson.D{
			{{"key", nameKey}, {"name", "name_1"}},
			{{"key", nameKey}, {"name", "name_fr"}, {"collation", bson.D{{"locale", "fr"}}}},
			{{"key", skuKey}, {"name", "sku_active"}, {"partialFilterExpression", bson.D{{"active", true}}}},
			{{"key", skuKey}, {"name", "sku_all"}},
		}}

		Convey("are all created when collation or filter tell them apart", func() {
			n, err := restore.RestoreIndexesForNamespace(context.Background(), "db", "c", meta)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 4)

			var names []string
			for _, index := range target.C("db", "c").Indexes {
				names = append(names, index.Name())
			}
			So(names, ShouldResemble, []string{"name_1", "name_fr", "sku_active", "sku_all"})
		})

		Convey("a true duplicate goes to the server and is counted as a failure", func() {
			meta.Indexes = append(meta.Indexes, bson.D{{"key", bson.D{{"name", 1.0}}}, {"name", "name_again"}})
			n, err := restore.RestoreIndexesForNamespace(context.Background(), "db", "c", meta)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "1 of 5 indexes failed")
			So(n, ShouldEqual, 4)
			So(target.C("db", "c").Indexes, ShouldHaveLength, 4)
		})
	})
}

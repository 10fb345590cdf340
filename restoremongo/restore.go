// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package restoremongo

import (
	"context"

	"github.com/oramatt/extract-schemas/common/bsonutil"
	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/common/util"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Source names where a collection's documents came from.
type Source string

const (
	SourceNone      Source = "none"
	SourceSample    Source = "sample document"
	SourceSynthetic Source = "schema"
)

// Result encapsulates the outcome of restoring one collection.
type Result struct {
	Source         Source
	Inserted       int64
	IndexesCreated int
	// Count is the number of documents in the collection after the restore,
	// or -1 when it wasn't checked.
	Count int64
	Err   error
}

// Restored reports whether documents were written without error.
func (result Result) Restored() bool {
	return result.Err == nil && result.Source != SourceNone
}

// withErr returns a copy of the current result with the provided error
func (result Result) withErr(err error) Result {
	result.Err = err
	return result
}

// log pretty-prints the result, associated with restoring the given namespace
func (result Result) log(ns string) {
	if result.Err != nil {
		log.Logvf(log.Always, "failed to restore %v: %v", ns, result.Err)
	}
	log.Logvf(log.Always, "finished restoring %v from %v (%v %v inserted, %v %v)",
		ns, result.Source,
		result.Inserted, util.Pluralize(int(result.Inserted), "document", "documents"),
		result.IndexesCreated, util.Pluralize(result.IndexesCreated, "index", "indexes"))
}

// RestoreCollection restores one collection from the metadata folder collDir.
// The collection is dropped first, then filled from the captured sample
// document or, failing that, from synthetic documents generated from the
// schema. Indexes are rebuilt whenever schema metadata is available.
func (restore *RestoreMongo) RestoreCollection(ctx context.Context, dbName, collName, collDir string) Result {
	namespace := util.JoinNamespace(dbName, collName)
	result := Result{Source: SourceNone, Count: -1}
	dryRun := restore.OutputOptions.DryRun

	log.Logvf(log.Info, "restoring %v from %v", namespace, collDir)

	if dryRun {
		log.Logvf(log.DebugLow, "dry run: not dropping %v", namespace)
	} else {
		exists, err := restore.Target.CollectionExists(ctx, dbName, collName)
		if err != nil {
			return result.withErr(errors.Wrapf(err, "error checking for %v", namespace))
		}
		if exists {
			log.Logvf(log.Info, "dropping existing collection %v", namespace)
			if err = restore.Target.DropCollection(ctx, dbName, collName); err != nil {
				return result.withErr(errors.Wrapf(err, "error dropping %v", namespace))
			}
		}
	}

	meta, err := LoadSchemaMetadata(collDir)
	if err != nil {
		logMetadataError("schema metadata for "+namespace, err)
		meta = nil
	}

	var docs []bson.D
	sample, err := LoadSampleDocument(collDir)
	switch {
	case err == nil:
		result.Source = SourceSample
		docs = []bson.D{bsonutil.RemoveKey(sample, "_id")}
	case meta != nil && meta.Schema != nil:
		logMetadataError("sample document for "+namespace, err)
		result.Source = SourceSynthetic
		n := restore.OutputOptions.NumSyntheticDocs
		log.Logvf(log.Info, "generating %v synthetic %v for %v", n, util.Pluralize(n, "document", "documents"), namespace)
		docs = restore.Generator.GenerateN(meta.Schema, n)
	default:
		logMetadataError("sample document for "+namespace, err)
		log.Logvf(log.Always, "skipping %v: no usable sample document or schema", namespace)
		return result.withErr(errors.Wrapf(ErrNoUsableMetadata, "%v", namespace))
	}

	if dryRun {
		for _, doc := range docs {
			log.Logvf(log.DebugLow, "dry run: would insert into %v: %v", namespace, bsonutil.CreateExtJSONString(doc))
		}
		result.Inserted = int64(len(docs))
	} else {
		inserted, err := restore.Target.InsertDocuments(ctx, dbName, collName, docs)
		result.Inserted = int64(inserted)
		if err != nil {
			logFailedInsert(namespace, docs, err)
			return result.withErr(errors.Wrapf(err, "error inserting into %v", namespace))
		}
	}

	if restore.OutputOptions.NoIndexRestore {
		log.Logvf(log.DebugLow, "not restoring indexes on %v because of --noIndexRestore", namespace)
	} else {
		result.IndexesCreated, err = restore.RestoreIndexesForNamespace(ctx, dbName, collName, meta)
		if err != nil {
			result.Err = err
		}
	}

	if !dryRun {
		count, err := restore.Target.CountDocuments(ctx, dbName, collName)
		if err != nil {
			log.Logvf(log.Always, "error counting documents in %v: %v", namespace, err)
		} else {
			result.Count = count
			log.Logvf(log.Info, "%v now holds %v %v", namespace, count, util.Pluralize(int(count), "document", "documents"))
		}
	}

	return result
}

func logFailedInsert(namespace string, docs []bson.D, err error) {
	log.Logvf(log.Always, "error inserting %v %v into %v: %v",
		len(docs), util.Pluralize(len(docs), "document", "documents"), namespace, err)
	for _, doc := range docs {
		log.Logvf(log.Always, "failed document: %v", bsonutil.CreateExtJSONString(doc))
	}
}

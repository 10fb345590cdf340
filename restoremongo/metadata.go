// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package restoremongo

import (
	"os"
	"path/filepath"

	"github.com/oramatt/extract-schemas/common/bsonutil"
	"github.com/oramatt/extract-schemas/common/log"
	"github.com/oramatt/extract-schemas/synthetic"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// File names inside a collection's metadata folder.
const (
	SampleDocumentFile = "example_document.json"
	SchemaFile         = "schema_and_indexes.json"
)

// Sentinel errors for the ways a metadata source can be unusable. Parse
// failures are returned wrapped and match neither.
var (
	ErrMetadataNotFound = errors.New("metadata file not found")
	ErrMetadataEmpty    = errors.New("metadata file is empty")
)

// ErrNoUsableMetadata marks a collection that had neither a sample document
// nor a schema to restore from.
var ErrNoUsableMetadata = errors.New("no usable sample document or schema")

// SchemaMetadata is the content of a schema_and_indexes.json file.
type SchemaMetadata struct {
	// Schema is nil when the file has no schema section.
	Schema  *synthetic.Schema
	Indexes []bson.D
}

// LoadMetadata reads and parses a metadata file.
func LoadMetadata(path string) (bson.D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrMetadataNotFound, "%v", path)
		}
		return nil, errors.Wrapf(err, "error reading %v", path)
	}
	if len(data) == 0 {
		return nil, errors.Wrapf(ErrMetadataEmpty, "%v", path)
	}
	doc, err := bsonutil.ParseExtJSON(data)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %v", path)
	}
	return doc, nil
}

// LoadSampleDocument returns the captured sample document of a collection
// folder. A null or empty sample is reported as ErrMetadataEmpty.
func LoadSampleDocument(collDir string) (bson.D, error) {
	path := filepath.Join(collDir, SampleDocumentFile)
	doc, err := LoadMetadata(path)
	if err != nil {
		return nil, err
	}
	sample, ok := bsonutil.LookupDocument(doc, "sample_document")
	if !ok || len(sample) == 0 {
		return nil, errors.Wrapf(ErrMetadataEmpty, "%v has no sample_document", path)
	}
	return sample, nil
}

// LoadSchemaMetadata returns the schema and index descriptors of a collection
// folder. A malformed schema section is logged and treated as absent so the
// indexes can still be restored.
func LoadSchemaMetadata(collDir string) (*SchemaMetadata, error) {
	path := filepath.Join(collDir, SchemaFile)
	doc, err := LoadMetadata(path)
	if err != nil {
		return nil, err
	}

	meta := &SchemaMetadata{}
	// an empty schema object still counts: it generates empty documents
	if raw, ok := bsonutil.LookupDocument(doc, "schema"); ok {
		meta.Schema, err = synthetic.ParseSchema(raw)
		if err != nil {
			log.Logvf(log.Always, "error parsing schema in %v: %v", path, err)
			meta.Schema = nil
		}
	}

	if raw, ok := bsonutil.Lookup(doc, "indexes"); ok && raw != nil {
		list, ok := raw.(bson.A)
		if !ok {
			log.Logvf(log.Always, "ignoring indexes in %v: expected a list, got %T", path, raw)
			return meta, nil
		}
		for i, entry := range list {
			index, ok := entry.(bson.D)
			if !ok {
				log.Logvf(log.Always, "ignoring index %d in %v: expected a document, got %T", i, path, entry)
				continue
			}
			meta.Indexes = append(meta.Indexes, index)
		}
	}
	return meta, nil
}

// logMetadataError reports why a metadata source can't be used, at a level
// that matches how surprising the cause is.
func logMetadataError(what string, err error) {
	switch {
	case errors.Is(err, ErrMetadataNotFound):
		log.Logvf(log.Info, "no %v: %v", what, err)
	case errors.Is(err, ErrMetadataEmpty):
		log.Logvf(log.Always, "warning: empty %v: %v", what, err)
	default:
		log.Logvf(log.Always, "error loading %v: %v", what, err)
	}
}

// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mock contains an in-memory implementation of db.Target.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/oramatt/extract-schemas/common/bsonutil"
	"github.com/oramatt/extract-schemas/common/db"
	"github.com/oramatt/extract-schemas/common/idx"
	"github.com/oramatt/extract-schemas/common/util"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var _ db.Target = (*Target)(nil)

// Target keeps collections in memory. Errors can be injected per operation.
type Target struct {
	mu          sync.Mutex
	Collections map[string]*Collection

	// Dropped lists every namespace DropCollection removed, in call order.
	Dropped []string

	InsertErr error
	DropErr   error
	// IndexErrs maps an index name to the error CreateIndex returns for it.
	IndexErrs map[string]error
}

// Collection is one in-memory collection.
type Collection struct {
	Name    string
	Docs    []bson.D
	Indexes []*idx.IndexDocument
}

// NewTarget returns an empty Target.
func NewTarget() *Target {
	return &Target{
		Collections: make(map[string]*Collection),
		IndexErrs:   make(map[string]error),
	}
}

// C returns the named collection, or nil if it does not exist.
func (t *Target) C(dbName, collName string) *Collection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Collections[util.JoinNamespace(dbName, collName)]
}

// Seed creates a collection holding docs, as if it had been restored earlier.
func (t *Target) Seed(dbName, collName string, docs ...bson.D) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.collection(dbName, collName)
	c.Docs = append(c.Docs, docs...)
}

func (t *Target) collection(dbName, collName string) *Collection {
	ns := util.JoinNamespace(dbName, collName)
	c, ok := t.Collections[ns]
	if !ok {
		c = &Collection{Name: collName}
		t.Collections[ns] = c
	}
	return c
}

func (t *Target) CollectionExists(_ context.Context, dbName, collName string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.Collections[util.JoinNamespace(dbName, collName)]
	return ok, nil
}

func (t *Target) DropCollection(_ context.Context, dbName, collName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.DropErr != nil {
		return t.DropErr
	}
	ns := util.JoinNamespace(dbName, collName)
	delete(t.Collections, ns)
	t.Dropped = append(t.Dropped, ns)
	return nil
}

// InsertDocuments stores docs, assigning a fresh ObjectID to any document
// without an _id the way the driver does.
func (t *Target) InsertDocuments(_ context.Context, dbName, collName string, docs []bson.D) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.InsertErr != nil {
		return 0, t.InsertErr
	}
	c := t.collection(dbName, collName)
	for _, doc := range docs {
		if !hasID(doc) {
			doc = append(bson.D{{"_id", bson.NewObjectID()}}, doc...)
		}
		c.Docs = append(c.Docs, doc)
	}
	return len(docs), nil
}

func hasID(doc bson.D) bool {
	for _, e := range doc {
		if e.Key == "_id" {
			return true
		}
	}
	return false
}

func (t *Target) CreateIndex(_ context.Context, dbName, collName string, index *idx.IndexDocument) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.IndexErrs[index.Name()]; ok {
		return err
	}
	c := t.collection(dbName, collName)
	for _, existing := range c.Indexes {
		if existing.Name() == index.Name() {
			return fmt.Errorf("index %v already exists on %v", index.Name(), collName)
		}
		if sameIndex(existing, index) {
			return fmt.Errorf("index %v already exists on %v with a different name: %v",
				index.Name(), collName, existing.Name())
		}
	}
	c.Indexes = append(c.Indexes, index)
	return nil
}

// sameIndex reports whether the server would treat a and b as one index: the
// same key pattern, collation and partial filter.
func sameIndex(a, b *idx.IndexDocument) bool {
	if !bsonutil.IsIndexKeysEqual(a.Key, b.Key) {
		return false
	}
	for _, opt := range distinguishingOptions {
		if !cmp.Equal(a.Options[opt], b.Options[opt]) {
			return false
		}
	}
	return true
}

var distinguishingOptions = []string{"collation", "partialFilterExpression"}

func (t *Target) CountDocuments(_ context.Context, dbName, collName string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.Collections[util.JoinNamespace(dbName, collName)]
	if !ok {
		return 0, nil
	}
	return int64(len(c.Docs)), nil
}

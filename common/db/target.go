// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"

	"github.com/oramatt/extract-schemas/common/idx"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Target is the set of write operations a restore performs against a
// collection. SessionProvider implements it against a live server.
type Target interface {
	// CollectionExists reports whether the collection is present.
	CollectionExists(ctx context.Context, dbName, collName string) (bool, error)
	// DropCollection drops the collection. Dropping a missing collection is
	// not an error.
	DropCollection(ctx context.Context, dbName, collName string) error
	// InsertDocuments inserts docs and returns how many were inserted.
	InsertDocuments(ctx context.Context, dbName, collName string, docs []bson.D) (int, error)
	// CreateIndex builds one index on the collection.
	CreateIndex(ctx context.Context, dbName, collName string, index *idx.IndexDocument) error
	// CountDocuments returns the number of documents in the collection.
	CountDocuments(ctx context.Context, dbName, collName string) (int64, error)
}

var _ Target = (*SessionProvider)(nil)

// CollectionExists implements Target.
func (sp *SessionProvider) CollectionExists(ctx context.Context, dbName, collName string) (bool, error) {
	session, err := sp.GetSession()
	if err != nil {
		return false, err
	}
	names, err := session.Database(dbName).ListCollectionNames(ctx, bson.D{{"name", collName}})
	if err != nil {
		return false, errors.Wrapf(err, "error listing collections in %v", dbName)
	}
	return len(names) > 0, nil
}

// DropCollection implements Target.
func (sp *SessionProvider) DropCollection(ctx context.Context, dbName, collName string) error {
	session, err := sp.GetSession()
	if err != nil {
		return err
	}
	err = session.Database(dbName).Collection(collName).Drop(ctx)
	if err != nil && !IsNamespaceNotFound(err) {
		return errors.Wrapf(err, "error dropping %v.%v", dbName, collName)
	}
	return nil
}

// InsertDocuments implements Target.
func (sp *SessionProvider) InsertDocuments(ctx context.Context, dbName, collName string, docs []bson.D) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	session, err := sp.GetSession()
	if err != nil {
		return 0, err
	}
	batch := make([]interface{}, len(docs))
	for i, doc := range docs {
		batch[i] = doc
	}
	res, err := session.Database(dbName).Collection(collName).InsertMany(ctx, batch)
	if res != nil && err != nil {
		return len(res.InsertedIDs), err
	}
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// CreateIndex implements Target. The index is built with the createIndexes
// command so that every stored option reaches the server unchanged.
func (sp *SessionProvider) CreateIndex(ctx context.Context, dbName, collName string, index *idx.IndexDocument) error {
	session, err := sp.GetSession()
	if err != nil {
		return err
	}
	cmd := bson.D{
		{"createIndexes", collName},
		{"indexes", bson.A{index.CreateIndexSpec()}},
	}
	return session.Database(dbName).RunCommand(ctx, cmd).Err()
}

// CountDocuments implements Target.
func (sp *SessionProvider) CountDocuments(ctx context.Context, dbName, collName string) (int64, error) {
	session, err := sp.GetSession()
	if err != nil {
		return 0, err
	}
	return session.Database(dbName).Collection(collName).CountDocuments(ctx, bson.D{})
}

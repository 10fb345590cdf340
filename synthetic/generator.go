// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package synthetic generates plausible documents from a schema descriptor: a
// mapping from field dot-paths to the BSON type tags observed for them.
package synthetic

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/oramatt/extract-schemas/common/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Generator produces synthetic documents. It is not safe for concurrent use.
type Generator struct {
	faker    *gofakeit.Faker
	registry *Registry
}

// New returns a Generator with the default registry. A seed of 0 picks a
// random seed; any other value makes the output reproducible, apart from
// ObjectIds.
func New(seed uint64) *Generator {
	return NewWithRegistry(seed, DefaultRegistry())
}

// NewWithRegistry returns a Generator that resolves tags through r.
func NewWithRegistry(seed uint64, r *Registry) *Generator {
	return &Generator{
		faker:    gofakeit.New(seed),
		registry: r,
	}
}

// Generate builds one document from schema. The _id field is skipped unless
// includeID is set.
func (g *Generator) Generate(schema *Schema, includeID bool) bson.D {
	return g.generateFields(schema.Fields(), includeID)
}

// GenerateN builds n documents from schema, none holding an _id.
func (g *Generator) GenerateN(schema *Schema, n int) []bson.D {
	docs := make([]bson.D, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, g.Generate(schema, false))
	}
	return docs
}

func (g *Generator) generateFields(fields []*Field, includeID bool) bson.D {
	doc := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if f.Name == "_id" && !includeID {
			continue
		}
		// intermediate nodes only exist to hold their children
		if f.Tags.Cardinality() == 0 {
			log.Logvf(log.DebugHigh, "skipping untyped field %v", f.Path)
			continue
		}
		val, err := g.Value(f)
		if err != nil {
			log.Logvf(log.Always, "error generating value for field %v: %v", f.Path, err)
			val = nil
		}
		doc = append(doc, bson.E{Key: f.Name, Value: val})
	}
	return doc
}

// Value generates a value for a single field.
func (g *Generator) Value(f *Field) (val interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			val, err = nil, fmt.Errorf("generator panicked: %v", r)
		}
	}()

	tag, fn, ok := g.registry.Resolve(f)
	if !ok {
		return UnknownValue, nil
	}
	log.Logvf(log.DebugHigh, "generating %v for field %v", tag, f.Path)
	return fn(g, f)
}

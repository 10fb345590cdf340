// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package synthetic

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/oramatt/extract-schemas/common/log"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Field is one node of a schema. Dot-path entries such as "address.city"
// become a child "city" under "address".
type Field struct {
	// Name is the last path segment.
	Name string
	// Path is the full dot-path from the schema root.
	Path string
	// Tags holds the observed type tags. It is empty for intermediate nodes
	// that only exist because a descendant was listed.
	Tags     mapset.Set[string]
	Children []*Field

	childIndex map[string]*Field
}

func newField(name, path string) *Field {
	return &Field{
		Name:       name,
		Path:       path,
		Tags:       mapset.NewThreadUnsafeSet[string](),
		childIndex: map[string]*Field{},
	}
}

func (f *Field) child(name string) *Field {
	if c, ok := f.childIndex[name]; ok {
		return c
	}
	path := name
	if f.Path != "" {
		path = f.Path + "." + name
	}
	c := newField(name, path)
	f.childIndex[name] = c
	f.Children = append(f.Children, c)
	return c
}

// Child returns the direct child with the given name, or nil.
func (f *Field) Child(name string) *Field {
	return f.childIndex[name]
}

// HasTag reports whether tag was observed for the field.
func (f *Field) HasTag(tag string) bool {
	return f.Tags.Contains(tag)
}

// Schema is a parsed schema descriptor. Top-level fields keep the order they
// had in the descriptor.
type Schema struct {
	root *Field
}

// Fields returns the top-level fields.
func (s *Schema) Fields() []*Field {
	return s.root.Children
}

// Lookup finds a field by dot-path.
func (s *Schema) Lookup(path string) *Field {
	f := s.root
	for _, part := range strings.Split(path, ".") {
		if f = f.Child(part); f == nil {
			return nil
		}
	}
	return f
}

// Len returns the number of top-level fields.
func (s *Schema) Len() int {
	return len(s.root.Children)
}

// NewSchema builds a schema from a field-to-tags mapping. Keys are dot-paths
// and top-level fields are ordered by name.
func NewSchema(fields map[string][]string) *Schema {
	s := &Schema{root: newField("", "")}
	paths := lo.Keys(fields)
	sort.Strings(paths)
	for _, path := range paths {
		s.add(path, fields[path])
	}
	return s
}

// ParseSchema builds a schema from the "schema" section of a metadata file.
// Each value is a list of type tags; a bare string counts as a single tag.
func ParseSchema(doc bson.D) (*Schema, error) {
	s := &Schema{root: newField("", "")}
	for _, elem := range doc {
		if elem.Key == "" {
			return nil, fmt.Errorf("schema contains an empty field name")
		}
		var tags []string
		switch v := elem.Value.(type) {
		case bson.A:
			for _, t := range v {
				if tag, ok := t.(string); ok {
					tags = append(tags, tag)
				} else {
					log.Logvf(log.DebugLow, "ignoring non-string type tag %v for field %v", t, elem.Key)
				}
			}
		case string:
			tags = []string{v}
		case nil:
		default:
			return nil, fmt.Errorf("type tags for field %v are a %T, not a list", elem.Key, elem.Value)
		}
		s.add(elem.Key, tags)
	}
	return s, nil
}

func (s *Schema) add(path string, tags []string) {
	f := s.root
	for _, part := range strings.Split(path, ".") {
		f = f.child(part)
	}
	f.Tags.Append(tags...)
}

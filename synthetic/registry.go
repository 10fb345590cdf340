// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package synthetic

import (
	"strings"
)

// Type tags as they appear in schema descriptors.
const (
	TagString            = "string"
	TagInt               = "int"
	TagLong              = "long"
	TagDouble            = "double"
	TagDecimal128        = "Decimal128"
	TagBoolean           = "boolean"
	TagDate              = "date"
	TagArray             = "array"
	TagObject            = "object"
	TagObjectID          = "ObjectId"
	TagNull              = "null"
	TagGeoJSONPoint      = "GeoJSON Point"
	TagGeoJSONLineString = "GeoJSON LineString"
	TagGeoJSONPolygon    = "GeoJSON Polygon"
	TagTimestamp         = "timestamp"
	TagUUID              = "uuid"
	UnknownValue         = "unknown"
)

// ValueFunc produces a value for field f.
type ValueFunc func(g *Generator, f *Field) (interface{}, error)

// NameRule overrides a tag's default value when the field name contains one of
// Substrings, compared case-insensitively.
type NameRule struct {
	Substrings []string
	// Unless, when set, vetoes the rule for a matching field.
	Unless     func(f *Field) bool
	Value      ValueFunc
}

func (r NameRule) matches(f *Field) bool {
	name := strings.ToLower(f.Name)
	for _, sub := range r.Substrings {
		if strings.Contains(name, sub) {
			return r.Unless == nil || !r.Unless(f)
		}
	}
	return false
}

type entry struct {
	tag   string
	value ValueFunc
	rules []NameRule
}

// Registry maps type tags to value generators. Tags are tried in the order
// they were registered; the first one the field carries wins.
type Registry struct {
	entries []*entry
	byTag   map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTag: map[string]*entry{}}
}

// Register adds tag with its default generator at the lowest priority. If the
// tag is already registered its generator is replaced and its position and
// name rules are kept.
func (r *Registry) Register(tag string, fn ValueFunc) {
	if e, ok := r.byTag[tag]; ok {
		e.value = fn
		return
	}
	e := &entry{tag: tag, value: fn}
	r.entries = append(r.entries, e)
	r.byTag[tag] = e
}

// AddNameRule appends a field-name rule to a registered tag. Rules are
// evaluated in the order they were added, before the tag's default.
func (r *Registry) AddNameRule(tag string, rule NameRule) bool {
	e, ok := r.byTag[tag]
	if !ok {
		return false
	}
	e.rules = append(e.rules, rule)
	return true
}

// Tags lists the registered tags in priority order.
func (r *Registry) Tags() []string {
	tags := make([]string, len(r.entries))
	for i, e := range r.entries {
		tags[i] = e.tag
	}
	return tags
}

// Resolve returns the tag that wins for f and the generator to use, taking
// name rules into account. ok is false when none of f's tags is registered.
func (r *Registry) Resolve(f *Field) (tag string, fn ValueFunc, ok bool) {
	for _, e := range r.entries {
		if !f.HasTag(e.tag) {
			continue
		}
		for _, rule := range e.rules {
			if rule.matches(f) {
				return e.tag, rule.Value, true
			}
		}
		return e.tag, e.value, true
	}
	return "", nil, false
}

// DefaultRegistry returns the registry used by New: every known tag in
// priority order, with the field-name rules for strings, ints, doubles and
// arrays.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TagString, genWord)
	r.Register(TagInt, intIn(1, 100))
	r.Register(TagLong, genLong)
	r.Register(TagDouble, doubleIn(1.0, 1000.0, 2))
	r.Register(TagDecimal128, genDecimal128)
	r.Register(TagBoolean, genBoolean)
	r.Register(TagDate, genDateTime)
	r.Register(TagArray, wordsN(3))
	r.Register(TagObject, genObject)
	r.Register(TagObjectID, genObjectID)
	r.Register(TagNull, genNull)
	r.Register(TagGeoJSONPoint, genPoint)
	r.Register(TagGeoJSONLineString, genLineString)
	r.Register(TagGeoJSONPolygon, genPolygon)
	r.Register(TagTimestamp, genTimestamp)
	r.Register(TagUUID, genUUID)

	for _, rule := range []NameRule{
		{Substrings: []string{"email"}, Value: genEmail},
		{Substrings: []string{"name"}, Value: genName},
		{Substrings: []string{"city"}, Value: genCity},
		{Substrings: []string{"address"}, Value: genAddress},
		{Substrings: []string{"phone"}, Value: genPhone},
		{Substrings: []string{"url", "website"}, Value: genURL},
		{
			Substrings: []string{"date"},
			Unless:     func(f *Field) bool { return f.HasTag(TagDate) || f.HasTag(TagTimestamp) },
			Value:      genCalendarDate,
		},
		{Substrings: []string{"description", "notes", "comment"}, Value: genParagraph},
	} {
		r.AddNameRule(TagString, rule)
	}

	r.AddNameRule(TagInt, NameRule{Substrings: []string{"age"}, Value: intIn(18, 80)})
	r.AddNameRule(TagInt, NameRule{Substrings: []string{"year"}, Value: intIn(1950, 2025)})
	r.AddNameRule(TagInt, NameRule{Substrings: []string{"count", "quantity"}, Value: intIn(1, 1000)})

	r.AddNameRule(TagDouble, NameRule{Substrings: []string{"price", "cost", "fee"}, Value: doubleIn(1.0, 1000.0, 2)})
	r.AddNameRule(TagDouble, NameRule{Substrings: []string{"rating", "score"}, Value: doubleIn(0.0, 5.0, 1)})

	r.AddNameRule(TagArray, NameRule{Substrings: []string{"tags", "categories"}, Value: wordsBetween(1, 5)})

	return r
}

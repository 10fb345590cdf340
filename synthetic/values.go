// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package synthetic

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	isoDateTimeFormat = "2006-01-02T15:04:05"
	calendarFormat    = "2006-01-02"
)

var (
	timestampStart = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)
	timestampEnd   = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func genWord(g *Generator, _ *Field) (interface{}, error)  { return g.faker.Word(), nil }
func genEmail(g *Generator, _ *Field) (interface{}, error) { return g.faker.Email(), nil }
func genName(g *Generator, _ *Field) (interface{}, error)  { return g.faker.Name(), nil }
func genCity(g *Generator, _ *Field) (interface{}, error)  { return g.faker.City(), nil }
func genPhone(g *Generator, _ *Field) (interface{}, error) { return g.faker.Phone(), nil }
func genURL(g *Generator, _ *Field) (interface{}, error)   { return g.faker.URL(), nil }

func genAddress(g *Generator, _ *Field) (interface{}, error) {
	return g.faker.Address().Address, nil
}

func genCalendarDate(g *Generator, _ *Field) (interface{}, error) {
	return g.faker.Date().Format(calendarFormat), nil
}

func genParagraph(g *Generator, _ *Field) (interface{}, error) {
	return g.faker.Paragraph(1, 3, 10, " "), nil
}

func intIn(min, max int) ValueFunc {
	return func(g *Generator, _ *Field) (interface{}, error) {
		return int32(g.faker.IntRange(min, max)), nil
	}
}

func genLong(g *Generator, _ *Field) (interface{}, error) {
	// drawn as uint64 so the range also fits on 32-bit platforms
	return int64(1_000_000_000 + g.faker.Uint64()%9_000_000_000), nil
}

func doubleIn(min, max float64, places int) ValueFunc {
	return func(g *Generator, _ *Field) (interface{}, error) {
		return roundTo(g.faker.Float64Range(min, max), places), nil
	}
}

func genDecimal128(g *Generator, _ *Field) (interface{}, error) {
	v := roundTo(g.faker.Float64Range(-1000.0, 1000.0), 6)
	d, err := bson.ParseDecimal128(strconv.FormatFloat(v, 'f', -1, 64))
	if err != nil {
		return nil, errors.Wrapf(err, "error converting %v to Decimal128", v)
	}
	return d, nil
}

func genBoolean(g *Generator, _ *Field) (interface{}, error) {
	return g.faker.Bool(), nil
}

func genDateTime(g *Generator, _ *Field) (interface{}, error) {
	return g.faker.Date().Format(isoDateTimeFormat), nil
}

func wordsN(n int) ValueFunc {
	return func(g *Generator, _ *Field) (interface{}, error) {
		words := make(bson.A, n)
		for i := range words {
			words[i] = g.faker.Word()
		}
		return words, nil
	}
}

func wordsBetween(min, max int) ValueFunc {
	return func(g *Generator, f *Field) (interface{}, error) {
		return wordsN(g.faker.IntRange(min, max))(g, f)
	}
}

// genObject produces a GeoJSON Point for a "location" field whose "type"
// child was seen holding "Point". Anything else becomes a placeholder
// document merged with its generated children.
func genObject(g *Generator, f *Field) (interface{}, error) {
	if strings.EqualFold(f.Name, "location") {
		if typ := f.Child("type"); typ != nil && typ.HasTag("Point") {
			return genPoint(g, f)
		}
	}

	doc := bson.D{{"nested_key", g.faker.Word()}}
	for _, elem := range g.generateFields(f.Children, false) {
		doc = setKey(doc, elem)
	}
	return doc, nil
}

func setKey(doc bson.D, elem bson.E) bson.D {
	for i := range doc {
		if doc[i].Key == elem.Key {
			doc[i].Value = elem.Value
			return doc
		}
	}
	return append(doc, elem)
}

func genObjectID(*Generator, *Field) (interface{}, error) {
	return bson.NewObjectID(), nil
}

func genNull(*Generator, *Field) (interface{}, error) {
	return nil, nil
}

func genTimestamp(g *Generator, _ *Field) (interface{}, error) {
	t := g.faker.DateRange(timestampStart, timestampEnd)
	return bson.Timestamp{T: uint32(t.Unix()), I: uint32(g.faker.IntRange(1, 100))}, nil
}

func genUUID(g *Generator, _ *Field) (interface{}, error) {
	u, err := uuid.Parse(g.faker.UUID())
	if err != nil {
		return nil, errors.Wrap(err, "error generating UUID")
	}
	return bson.Binary{Subtype: bson.TypeBinaryUUID, Data: u[:]}, nil
}

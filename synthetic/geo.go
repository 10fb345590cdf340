// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package synthetic

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// polygonStep is the side length, in degrees, of generated polygons.
const polygonStep = 0.1

func (g *Generator) position() bson.A {
	return bson.A{g.faker.Longitude(), g.faker.Latitude()}
}

func geometry(kind string, coordinates bson.A) bson.D {
	return bson.D{{"type", kind}, {"coordinates", coordinates}}
}

func genPoint(g *Generator, _ *Field) (interface{}, error) {
	return geometry("Point", g.position()), nil
}

func genLineString(g *Generator, _ *Field) (interface{}, error) {
	return geometry("LineString", bson.A{g.position(), g.position(), g.position()}), nil
}

// genPolygon returns a square ring anchored at a random position. The last
// point repeats the first so the ring is closed.
func genPolygon(g *Generator, _ *Field) (interface{}, error) {
	lon := g.faker.Float64Range(-180, 180-polygonStep)
	lat := g.faker.Float64Range(-90, 90-polygonStep)
	ring := bson.A{
		bson.A{lon, lat},
		bson.A{lon + polygonStep, lat},
		bson.A{lon + polygonStep, lat + polygonStep},
		bson.A{lon, lat + polygonStep},
		bson.A{lon, lat},
	}
	return geometry("Polygon", bson.A{ring}), nil
}

package shapeload

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
)

const srid = 4326

// polygonToEWKB converts a shapefile polygon to EWKB hex suitable for COPY
// into a PostGIS geometry column. The first part is treated as the shell
// and subsequent parts as rings, which matches how boundary products are
// exported.
func polygonToEWKB(p *shp.Polygon) (string, error) {
	numParts := len(p.Parts)
	if numParts == 0 {
		return "", eris.New("shapeload: polygon has no parts")
	}

	coords := make([][]geom.Coord, 0, numParts)
	for i := 0; i < numParts; i++ {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < numParts {
			end = int(p.Parts[i+1])
		}

		ring := make([]geom.Coord, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
		}
		// PostGIS requires closed rings.
		if len(ring) > 0 && !ring[0].Equal(geom.XY, ring[len(ring)-1]) {
			ring = append(ring, ring[0])
		}
		coords = append(coords, ring)
	}

	poly := geom.NewPolygon(geom.XY)
	if _, err := poly.SetCoords(coords); err != nil {
		return "", eris.Wrap(err, "shapeload: build polygon")
	}
	poly.SetSRID(srid)

	encoded, err := ewkbhex.Encode(poly, ewkbhex.NDR)
	if err != nil {
		return "", eris.Wrap(err, "shapeload: encode ewkb")
	}
	return encoded, nil
}

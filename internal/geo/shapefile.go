package geo

import (
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/roster"
)

// CentersFromShapefile derives municipality reference coordinates from a
// boundary shapefile by computing the centroid of each named polygon. The
// nameField parameter selects the attribute column carrying the municipality
// name (e.g. "NAME_2" for GADM, "Concelho" for CAOP exports). Names are
// normalized to Title Case so they line up with facility city labels.
func CentersFromShapefile(path, nameField string, normalize func(string) string) (map[string]roster.Center, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, eris.Errorf("geo: field %q not found in %s", nameField, path)
	}

	centers := make(map[string]roster.Center)
	for reader.Next() {
		_, shape := reader.Shape()
		polygon, ok := shape.(*shp.Polygon)
		if !ok || polygon == nil {
			continue
		}

		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if normalize != nil {
			name = normalize(name)
		}
		if name == "" {
			continue
		}

		mp := polygonToMultiPolygon(polygon)
		if mp == nil {
			zap.L().Debug("geo: skipping malformed polygon", zap.String("name", name))
			continue
		}

		centroid, err := xy.Centroid(mp)
		if err != nil {
			zap.L().Debug("geo: centroid failed", zap.String("name", name), zap.Error(err))
			continue
		}

		centers[name] = roster.Center{Lat: centroid.Y(), Lng: centroid.X()}
	}

	if len(centers) == 0 {
		return nil, eris.Errorf("geo: no named polygons found in %s", path)
	}
	return centers, nil
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Malformed parts are skipped rather than failing the whole record.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

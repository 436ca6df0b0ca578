package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/smukkama/aquasure-server/internal/database"
)

// ParseBBox parses "minLon,minLat,maxLon,maxLat"
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox must be minLon,minLat,maxLon,maxLat")
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid bbox value %q: %w", p, err)
		}
		v[i] = f
	}

	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("bbox minimum exceeds maximum")
	}
	if v[0] < -180 || v[2] > 180 || v[1] < -90 || v[3] > 90 {
		return orb.Bound{}, fmt.Errorf("bbox out of range")
	}

	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// FeatureCollection maps samples to point features. A nil bound keeps every
// sample; otherwise only samples inside it are included.
func FeatureCollection(samples []*database.Sample, projects map[uuid.UUID]*database.Project, bound *orb.Bound) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	var points orb.MultiPoint
	for _, s := range samples {
		point := orb.Point{s.Longitude, s.Latitude}
		if bound != nil && !bound.Contains(point) {
			continue
		}

		feature := geojson.NewFeature(point)
		feature.ID = s.ID.String()
		feature.Properties["sample_id"] = s.SampleCode
		feature.Properties["project_id"] = s.ProjectID.String()
		if p, ok := projects[s.ProjectID]; ok {
			feature.Properties["project"] = p.Name
			feature.Properties["location"] = p.Location()
		}
		feature.Properties["metal"] = string(s.Metal)
		feature.Properties["concentration"] = s.Concentration
		feature.Properties["hmpi"] = s.HMPIValue
		feature.Properties["risk_level"] = string(s.RiskLevel)
		feature.Properties["color"] = s.RiskLevel.Color()
		feature.Properties["date"] = s.DateCollected.Format("2006-01-02")

		fc.Append(feature)
		points = append(points, point)
	}

	if len(points) > 0 {
		fc.BBox = geojson.NewBBox(points.Bound())
	}
	return fc
}

package rrtplanner

import (
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// LoadObstacles reads a GeoJSON FeatureCollection and returns its Polygon
// and MultiPolygon geometries as obstacle polygons.
func LoadObstacles(path string) ([]orb.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read obstacle file %s", path)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse obstacle file %s", path)
	}

	var out []orb.Polygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			out = append(out, g)
		case orb.MultiPolygon:
			out = append(out, g...)
		}
	}
	return out, nil
}

// LoadObstaclesDir loads every *.geojson file in dir and concatenates the
// obstacles. Files that fail to parse are skipped; an error is returned
// only when the directory itself cannot be read.
func LoadObstaclesDir(dir string) ([]orb.Polygon, error) {
	if _, err := os.ReadDir(dir); err != nil {
		return nil, errors.Wrapf(err, "read obstacle dir %s", dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, errors.Wrapf(err, "glob obstacle dir %s", dir)
	}

	var out []orb.Polygon
	for _, file := range files {
		polys, err := LoadObstacles(file)
		if err != nil {
			continue
		}
		out = append(out, polys...)
	}
	return out, nil
}

// Package data embeds the default Subte datasets so the API can serve the map
// without any files on disk.
package data

import _ "embed"

// Stations is the station FeatureCollection (one Point per station).
//
//go:embed estaciones.geojson
var Stations []byte

// Lines is the line FeatureCollection (one LineString per line).
//
//go:embed lineas.geojson
var Lines []byte

package dataset

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/data"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

const mixedStations = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.3748, -34.5911]},
     "properties": {"id": 1, "name": "Retiro", "line": "C", "connections": ["E", "C", "Z"]}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.3847, -34.6018]},
     "properties": {"id": "10", "name": "Tribunales", "line": "D", "connections": "[\"B\"]", "address": "Talcahuano"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.3927, -34.5995]},
     "properties": {"ID": "9", "ESTACION": "Callao", "LINEA": "Linea D", "COMBINACION": "B, H"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.40, -34.60]},
     "properties": {"id": "abc", "name": "Sin Id", "line": "A"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.40, -34.60]},
     "properties": {"id": 40, "name": "Premetro", "line": "P"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[-58.4, -34.6], [-58.5, -34.7]]},
     "properties": {"id": 41, "name": "Not a point", "line": "A"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.40, -34.60]},
     "properties": {"id": 1, "name": "Retiro duplicado", "line": "E"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.40, -34.60]},
     "properties": {"id": 2.5, "name": "Fractional", "line": "A"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-58.40, -34.60]},
     "properties": {"id": 42, "name": "Broken connections", "line": "A", "connections": 7}}
  ]
}`

func TestParseStationsMixedSchemas(t *testing.T) {
	stations, report, err := ParseStations([]byte(mixedStations))
	if err != nil {
		t.Fatalf("ParseStations: %v", err)
	}

	if report.Loaded != 4 || len(stations) != 4 {
		t.Fatalf("loaded %d stations (report %d), want 4", len(stations), report.Loaded)
	}
	if len(report.Skipped) != 5 {
		t.Errorf("skipped %d records, want 5: %+v", len(report.Skipped), report.Skipped)
	}

	// dataset order is preserved
	names := []string{stations[0].Name, stations[1].Name, stations[2].Name, stations[3].Name}
	want := []string{"Retiro", "Tribunales", "Callao", "Broken connections"}
	if !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	retiro := stations[0]
	if !slices.Equal(retiro.Connections, []models.Line{models.LineE}) {
		t.Errorf("Retiro connections = %v, want [E] (own line and unknown dropped)", retiro.Connections)
	}

	tribunales := stations[1]
	if tribunales.ID != 10 {
		t.Errorf("textual id should parse as 10, got %d", tribunales.ID)
	}
	if tribunales.Address == nil || *tribunales.Address != "Talcahuano" {
		t.Errorf("address = %v", tribunales.Address)
	}
	if !slices.Equal(tribunales.Connections, []models.Line{models.LineB}) {
		t.Errorf("Tribunales connections = %v, want [B]", tribunales.Connections)
	}

	callao := stations[2]
	if callao.ID != 9 || callao.Line != models.LineD {
		t.Errorf("legacy record parsed as %+v", callao)
	}
	if !slices.Equal(callao.Connections, []models.Line{models.LineB, models.LineH}) {
		t.Errorf("Callao connections = %v, want [B H]", callao.Connections)
	}
	if callao.Coordinates.Lon() != -58.3927 || callao.Coordinates.Lat() != -34.5995 {
		t.Errorf("coordinates = %v", callao.Coordinates)
	}

	if len(stations[3].Connections) != 0 {
		t.Errorf("malformed connections should be empty, got %v", stations[3].Connections)
	}
}

func TestParseConnections(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  []models.Line
	}{
		{"list", []interface{}{"D", "e"}, []models.Line{models.LineD, models.LineE}},
		{"list with junk", []interface{}{"D", 3, nil, "Q"}, []models.Line{models.LineD}},
		{"encoded list", `["H","B"]`, []models.Line{models.LineB, models.LineH}},
		{"broken encoded list", `["H",`, []models.Line{}},
		{"separated", "Línea C / Línea D", []models.Line{models.LineC, models.LineD}},
		{"own line", "A", []models.Line{}},
		{"duplicates", []interface{}{"B", "b", "B"}, []models.Line{models.LineB}},
		{"number", 12.0, []models.Line{}},
		{"nil", nil, []models.Line{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseConnections(tt.input, models.LineA)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseConnections(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStationsInvalidJSON(t *testing.T) {
	if _, _, err := ParseStations([]byte("{invalid json")); err == nil {
		t.Error("expected error for corrupt GeoJSON")
	}
}

func TestLoadStationsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estaciones.geojson")
	os.WriteFile(path, []byte(mixedStations), 0644)

	stations, _, err := LoadStationsFile(path)
	if err != nil {
		t.Fatalf("LoadStationsFile: %v", err)
	}
	if len(stations) != 4 {
		t.Errorf("got %d stations, want 4", len(stations))
	}

	if _, _, err := LoadStationsFile(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestEmbeddedDataset guards the dataset shipped in the binary: every record
// must load, every line must be present and ids must be unique.
func TestEmbeddedDataset(t *testing.T) {
	stations, report, err := ParseStations(data.Stations)
	if err != nil {
		t.Fatalf("ParseStations: %v", err)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("embedded dataset has skipped records: %+v", report.Skipped)
	}

	perLine := make(map[models.Line]int)
	for _, s := range stations {
		perLine[s.Line]++
		for _, c := range s.Connections {
			if c == s.Line {
				t.Errorf("station %s connects to its own line", s.Name)
			}
		}
	}
	for _, line := range models.AllLines() {
		if perLine[line] < 2 {
			t.Errorf("line %s has %d stations", line, perLine[line])
		}
	}

	lines, err := ParseLines(data.Lines)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(lines) != len(models.AllLines()) {
		t.Errorf("got %d line geometries, want %d", len(lines), len(models.AllLines()))
	}
}

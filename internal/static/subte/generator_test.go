package subte

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/dataset"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static/gtfs"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// testFeed holds lines A and D crossing at Perú/Catedral, which share a
// parent station here to exercise transfer detection. Line D is listed
// first to check that ids follow display order rather than feed order.
func testFeed() *gtfs.Data {
	return &gtfs.Data{
		Routes: []gtfs.Route{
			{RouteID: "LD", RouteShortName: "D", RouteType: gtfs.RouteTypeSubway, RouteColor: "02db2e"},
			{RouteID: "LA", RouteShortName: "", RouteLongName: "Línea A", RouteType: gtfs.RouteTypeSubway},
			{RouteID: "PM", RouteShortName: "PM", RouteType: 0},
		},
		Stops: []gtfs.Stop{
			{StopID: "P1", StopName: "Perú / Catedral", StopLat: -34.6080, StopLon: -58.3740, LocationType: 1},
			{StopID: "A1", StopName: "Plaza de Mayo", StopLat: -34.6088, StopLon: -58.3709},
			{StopID: "A2", StopName: "Perú", StopLat: -34.6085, StopLon: -58.3742, ParentStation: "P1"},
			{StopID: "A3", StopName: "Piedras", StopLat: -34.6088, StopLon: -58.3790, StopDesc: "Av. de Mayo 700"},
			{StopID: "D1", StopName: "Catedral", StopLat: -34.6075, StopLon: -58.3738, ParentStation: "P1"},
			{StopID: "D2", StopName: "9 de Julio", StopLat: -34.6045, StopLon: -58.3805},
		},
		Trips: []gtfs.Trip{
			{RouteID: "LA", TripID: "A-short", DirectionID: 0},
			{RouteID: "LA", TripID: "A-full", DirectionID: 1, ShapeID: "SA"},
			{RouteID: "LD", TripID: "D-1", DirectionID: 0},
			{RouteID: "PM", TripID: "PM-1"},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "A-short", StopID: "A1", StopSequence: 1},
			{TripID: "A-full", StopID: "A3", StopSequence: 3},
			{TripID: "A-full", StopID: "A1", StopSequence: 1},
			{TripID: "A-full", StopID: "A2", StopSequence: 2},
			{TripID: "D-1", StopID: "D1", StopSequence: 1},
			{TripID: "D-1", StopID: "D2", StopSequence: 2},
			{TripID: "PM-1", StopID: "A1", StopSequence: 1},
		},
		Shapes: map[string][]gtfs.ShapePoint{
			"SA": {
				{ShapePtLat: -34.6088, ShapePtLon: -58.3709, ShapePtSequence: 1},
				{ShapePtLat: -34.6086, ShapePtLon: -58.3725, ShapePtSequence: 2},
				{ShapePtLat: -34.6085, ShapePtLon: -58.3742, ShapePtSequence: 3},
				{ShapePtLat: -34.6088, ShapePtLon: -58.3790, ShapePtSequence: 4},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	result, err := Build(testFeed())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []struct {
		id   int
		name string
		line models.Line
	}{
		{1, "Plaza de Mayo", models.LineA},
		{2, "Perú / Catedral", models.LineA},
		{3, "Piedras", models.LineA},
		{4, "Perú / Catedral", models.LineD},
		{5, "9 de Julio", models.LineD},
	}
	if len(result.Stations) != len(want) {
		t.Fatalf("stations = %d, want %d", len(result.Stations), len(want))
	}
	for i, w := range want {
		s := result.Stations[i]
		if s.ID != w.id || s.Name != w.name || s.Line != w.line {
			t.Errorf("station[%d] = %d %s %s, want %d %s %s", i, s.ID, s.Name, s.Line, w.id, w.name, w.line)
		}
	}

	peru := result.Stations[1]
	if len(peru.Connections) != 1 || peru.Connections[0] != models.LineD {
		t.Errorf("Perú connections = %v, want [D]", peru.Connections)
	}
	if len(result.Stations[0].Connections) != 0 {
		t.Errorf("Plaza de Mayo connections = %v", result.Stations[0].Connections)
	}
	if a := result.Stations[2].Address; a == nil || *a != "Av. de Mayo 700" {
		t.Errorf("Piedras address = %v", a)
	}
	if result.Stations[0].Info == nil || result.Stations[1].Info != nil || result.Stations[2].Info == nil {
		t.Error("only line termini should carry info")
	}

	if len(result.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(result.Lines))
	}
	lineA, lineD := result.Lines[0], result.Lines[1]
	if lineA.Line != models.LineA || len(lineA.Coordinates[0]) != 4 {
		t.Errorf("line A should use the shape: %+v", lineA)
	}
	if lineA.Color != models.GetLineColor(models.LineA) {
		t.Errorf("line A color = %s", lineA.Color)
	}
	if lineD.Color != "#02DB2E" {
		t.Errorf("line D color = %s, want route_color", lineD.Color)
	}
	if len(lineD.Coordinates[0]) != 2 || lineD.LengthMeters <= 0 {
		t.Errorf("line D should fall back to station coordinates: %+v", lineD)
	}
}

func TestBuildWithoutSubwayRoutes(t *testing.T) {
	data := testFeed()
	data.Routes = data.Routes[2:]
	if _, err := Build(data); err == nil {
		t.Error("expected error for a feed without subway routes")
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	manifest, err := Generate(testFeed(), dir)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if manifest.GeneratorVersion != GeneratorVersion || manifest.StationCount != 5 || manifest.LineCount != 2 {
		t.Errorf("manifest = %+v", manifest)
	}
	if len(manifest.Files[StationsFile]) != 64 {
		t.Errorf("missing checksum for %s", StationsFile)
	}

	stations, report, err := dataset.LoadStationsFile(filepath.Join(dir, StationsFile))
	if err != nil {
		t.Fatalf("LoadStationsFile: %v", err)
	}
	if len(report.Skipped) != 0 || len(stations) != 5 {
		t.Errorf("reloaded %d stations, skipped %v", len(stations), report.Skipped)
	}
	if len(stations[1].Connections) != 1 {
		t.Errorf("connections lost in round trip: %+v", stations[1])
	}

	lines, err := dataset.LoadLinesFile(filepath.Join(dir, LinesFile))
	if err != nil {
		t.Fatalf("LoadLinesFile: %v", err)
	}
	if len(lines) != 2 || lines[1].Color != "#02DB2E" {
		t.Errorf("lines = %+v", lines)
	}

	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	var stored map[string]interface{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatal(err)
	}
	if stored["generator_version"] != GeneratorVersion {
		t.Errorf("stored manifest = %v", stored)
	}
}

func TestBuildRouteToLineMapping(t *testing.T) {
	routes := []gtfs.Route{
		{RouteID: "1", RouteShortName: "A", RouteType: 1},
		{RouteID: "2", RouteShortName: "", RouteLongName: "Linea H", RouteType: 1},
		{RouteID: "3", RouteShortName: "PM", RouteLongName: "Premetro", RouteType: 1},
		{RouteID: "4", RouteShortName: "B", RouteType: 3},
	}

	mapping := buildRouteToLineMapping(routes)
	if len(mapping) != 2 || mapping["1"] != models.LineA || mapping["2"] != models.LineH {
		t.Errorf("mapping = %v", mapping)
	}
}

package gtfs

// RouteTypeSubway is the GTFS route_type of metro/subway routes
const RouteTypeSubway = 1

// Data represents the parsed parts of a GTFS feed
type Data struct {
	Routes    []Route
	Stops     []Stop
	Trips     []Trip
	Shapes    map[string][]ShapePoint // keyed by shape_id, sorted by sequence
	StopTimes []StopTime
}

// Route represents a route from routes.txt
type Route struct {
	RouteID        string
	RouteShortName string
	RouteLongName  string
	RouteType      int
	RouteColor     string
}

// Stop represents a stop from stops.txt
type Stop struct {
	StopID        string
	StopName      string
	StopDesc      string
	StopLat       float64
	StopLon       float64
	LocationType  int
	ParentStation string
}

// Trip represents a trip from trips.txt
type Trip struct {
	RouteID     string
	TripID      string
	DirectionID int
	ShapeID     string
}

// ShapePoint represents a point from shapes.txt
type ShapePoint struct {
	ShapePtLat      float64
	ShapePtLon      float64
	ShapePtSequence int
}

// StopTime represents a stop time from stop_times.txt
type StopTime struct {
	TripID       string
	StopID       string
	StopSequence int
}

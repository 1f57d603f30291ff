package location

// Location represents the geographical coordinates reported by a position sensor
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // Reported accuracy in meters, or HDOP for GPS fixes
}

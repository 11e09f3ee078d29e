package services

import (
	"fmt"
	"math"

	"med-field-force/internal/models"
)

// metersPerDegree turns the planar degree distance into approximate meters
const metersPerDegree = 111000

var DefaultOffice = models.Location{Lat: 19.0760, Lng: 72.8777}

const DefaultGeofenceRadius = 10000.0

// GeofenceResult is the outcome of a geofence check
type GeofenceResult struct {
	Distance float64
	Valid    bool
	Place    string
}

// EvaluateGeofence uses a flat-earth approximation, good enough within a
// few kilometres of the office
func EvaluateGeofence(captured, office models.Location, radiusMeters float64) GeofenceResult {
	dLat := captured.Lat - office.Lat
	dLng := captured.Lng - office.Lng
	distance := math.Sqrt(dLat*dLat+dLng*dLng) * metersPerDegree

	result := GeofenceResult{Distance: distance, Valid: distance <= radiusMeters}
	if result.Valid {
		result.Place = "Office"
	} else {
		result.Place = fmt.Sprintf("Outside Office (%.4f, %.4f)", captured.Lat, captured.Lng)
	}
	return result
}

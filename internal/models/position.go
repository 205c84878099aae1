package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Position represents a single GPS fix reported for a vehicle.
type Position struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Location  Location           `bson:"location" json:"location"`
	SpeedKmh  float64            `bson:"speed_kmh" json:"speed_kmh"`
	RouteID   string             `bson:"route_id,omitempty" json:"route_id,omitempty"`
}

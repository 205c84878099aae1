package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle types supported by the fleet.
const (
	VehicleTypeBus   = "bus"
	VehicleTypeTrain = "train"
	VehicleTypeVan   = "van"
	VehicleTypeTruck = "truck"
)

// Vehicle operational statuses.
const (
	VehicleStatusActive      = "active"
	VehicleStatusInService   = "in_service"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusAvailable   = "available"
)

// Vehicle represents a transit fleet vehicle.
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VIN             string             `bson:"vin" json:"vin"`
	VehicleNumber   string             `bson:"vehicle_number" json:"vehicle_number"`
	Type            string             `bson:"type" json:"type"` // "bus", "train", "van", "truck"
	Year            int                `bson:"year" json:"year"`
	FuelType        string             `bson:"fuel_type" json:"fuel_type"` // "diesel", "cng", "electric"
	ConsumptionRate float64            `bson:"consumption_rate" json:"consumption_rate"` // liters per 100 km
	Status          string             `bson:"status" json:"status"`
	CurrentRoute    string             `bson:"current_route" json:"current_route"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// InOperation reports whether the vehicle is currently running a route.
func (v *Vehicle) InOperation() bool {
	return v.Status == VehicleStatusActive || v.Status == VehicleStatusInService
}

// AgeYears returns the vehicle age in whole years relative to ref.
func (v *Vehicle) AgeYears(ref time.Time) int {
	age := ref.Year() - v.Year
	if age < 0 {
		return 0
	}
	return age
}

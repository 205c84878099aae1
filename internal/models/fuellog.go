package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// FuelLog represents a single refueling entry for a vehicle.
type FuelLog struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID  string             `json:"vehicle_id" bson:"vehicle_id"`
	Date       time.Time          `json:"date" bson:"date"`
	FuelType   string             `json:"fuel_type" bson:"fuel_type"`
	Amount     float64            `json:"amount" bson:"amount"` // in liters
	Cost       float64            `json:"cost" bson:"cost"`     // in USD
	Distance   float64            `json:"distance" bson:"distance"` // km since previous fill
	OperatorID string             `json:"operator_id" bson:"operator_id"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// ConsumptionPer100Km returns the liters-per-100km consumption implied by the
// entry, or 0 when no distance was recorded.
func (f *FuelLog) ConsumptionPer100Km() float64 {
	if f.Distance <= 0 {
		return 0
	}
	return f.Amount / f.Distance * 100
}

package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Maintenance record statuses.
const (
	MaintenanceStatusPending   = "pending"
	MaintenanceStatusCompleted = "completed"
)

// Maintenance represents a vehicle maintenance record. A completed record is an
// immutable historical fact.
type Maintenance struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID       string             `json:"vehicle_id" bson:"vehicle_id"`
	ServiceDate     time.Time          `json:"service_date" bson:"service_date"`
	NextServiceDate time.Time          `json:"next_service_date" bson:"next_service_date"`
	Description     string             `json:"description" bson:"description"`
	Cost            float64            `json:"cost" bson:"cost"` // in USD
	Status          string             `json:"status" bson:"status"` // "pending", "completed"
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

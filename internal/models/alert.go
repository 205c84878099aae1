package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Alert types, one per business rule family.
const (
	AlertTypeMaintenance = "maintenance"
	AlertTypeFuel        = "fuel"
	AlertTypeGPS         = "gps"
)

// Alert statuses.
const (
	AlertStatusOpen     = "open"
	AlertStatusResolved = "resolved"
)

// Alert severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert represents a fleet alert raised by a business rule and fanned out to
// the registered notification channels.
type Alert struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID  string             `bson:"vehicle_id" json:"vehicle_id"`
	Type       string             `bson:"type" json:"type"` // "maintenance", "fuel", "gps"
	Message    string             `bson:"message" json:"message"`
	Severity   string             `bson:"severity" json:"severity"`
	Status     string             `bson:"status" json:"status"` // "open", "resolved"
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	ResolvedAt *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}

// IsValidAlertType checks if an alert type is one of the known families.
func IsValidAlertType(alertType string) bool {
	switch alertType {
	case AlertTypeMaintenance, AlertTypeFuel, AlertTypeGPS:
		return true
	default:
		return false
	}
}

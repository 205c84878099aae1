package alerts

import (
	"fmt"
	"time"

	"github.com/transitops/ptfms/internal/models"
)

// Default rule thresholds.
const (
	DefaultSpeedLimitKmh = 90.0
	// A fill implying consumption this far above the vehicle's rated rate
	// flags a fuel problem (leak, theft, engine fault).
	fuelExcessFactor = 1.5
	// Position timestamps older than this against the report time indicate a
	// stale or failed GPS unit.
	staleFixAge = 15 * time.Minute
)

// PositionRule evaluates a GPS fix against its vehicle and yields an alert
// message when breached.
type PositionRule struct {
	Type     string
	Severity string
	Evaluate func(pos *models.Position, vehicle *models.Vehicle) (string, bool)
}

// FuelRule evaluates a fuel log entry against its vehicle.
type FuelRule struct {
	Type     string
	Severity string
	Evaluate func(entry *models.FuelLog, vehicle *models.Vehicle) (string, bool)
}

// DefaultPositionRules are applied to every ingested GPS fix.
var DefaultPositionRules = []PositionRule{
	{
		Type:     models.AlertTypeGPS,
		Severity: models.SeverityHigh,
		Evaluate: func(pos *models.Position, vehicle *models.Vehicle) (string, bool) {
			if pos.SpeedKmh <= DefaultSpeedLimitKmh {
				return "", false
			}
			return fmt.Sprintf("speeding: %.1f km/h (limit %.0f)", pos.SpeedKmh, DefaultSpeedLimitKmh), true
		},
	},
	{
		Type:     models.AlertTypeGPS,
		Severity: models.SeverityMedium,
		Evaluate: func(pos *models.Position, vehicle *models.Vehicle) (string, bool) {
			if vehicle == nil || !vehicle.InOperation() {
				return "", false
			}
			age := time.Since(pos.Timestamp)
			if age <= staleFixAge {
				return "", false
			}
			return fmt.Sprintf("stale GPS fix: last report %s ago", age.Round(time.Minute)), true
		},
	},
}

// DefaultFuelRules are applied to every recorded fuel log entry.
var DefaultFuelRules = []FuelRule{
	{
		Type:     models.AlertTypeFuel,
		Severity: models.SeverityMedium,
		Evaluate: func(entry *models.FuelLog, vehicle *models.Vehicle) (string, bool) {
			if vehicle == nil || vehicle.ConsumptionRate <= 0 {
				return "", false
			}
			actual := entry.ConsumptionPer100Km()
			if actual <= vehicle.ConsumptionRate*fuelExcessFactor {
				return "", false
			}
			return fmt.Sprintf("fuel consumption %.1f L/100km exceeds rated %.1f L/100km",
				actual, vehicle.ConsumptionRate), true
		},
	},
}

// EvaluatePosition runs the position rules and returns the alerts they raise.
func EvaluatePosition(rules []PositionRule, pos *models.Position, vehicle *models.Vehicle) []*models.Alert {
	var raised []*models.Alert
	for _, rule := range rules {
		msg, ok := rule.Evaluate(pos, vehicle)
		if !ok {
			continue
		}
		raised = append(raised, &models.Alert{
			VehicleID: pos.VehicleID,
			Type:      rule.Type,
			Severity:  rule.Severity,
			Message:   msg,
			Status:    models.AlertStatusOpen,
			CreatedAt: time.Now(),
		})
	}
	return raised
}

// EvaluateFuelLog runs the fuel rules and returns the alerts they raise.
func EvaluateFuelLog(rules []FuelRule, entry *models.FuelLog, vehicle *models.Vehicle) []*models.Alert {
	var raised []*models.Alert
	for _, rule := range rules {
		msg, ok := rule.Evaluate(entry, vehicle)
		if !ok {
			continue
		}
		raised = append(raised, &models.Alert{
			VehicleID: entry.VehicleID,
			Type:      rule.Type,
			Severity:  rule.Severity,
			Message:   msg,
			Status:    models.AlertStatusOpen,
			CreatedAt: time.Now(),
		})
	}
	return raised
}

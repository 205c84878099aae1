package maintenance

import (
	"time"

	"github.com/transitops/ptfms/internal/models"
)

// UsageBased shortens the interval for vehicles that are actively running
// routes and stretches it for vehicles sitting idle or already in the shop.
type UsageBased struct {
	now func() time.Time
}

// NewUsageBased returns a usage-based strategy using the wall clock.
func NewUsageBased() *UsageBased {
	return &UsageBased{now: time.Now}
}

// IntervalDays returns the interval implied by the vehicle's operational
// status.
func (s *UsageBased) IntervalDays(vehicle *models.Vehicle) int {
	switch vehicle.Status {
	case models.VehicleStatusActive, models.VehicleStatusInService:
		return 30
	case models.VehicleStatusMaintenance:
		return 180
	case models.VehicleStatusAvailable:
		return 90
	default:
		return 120
	}
}

// NextServiceDate returns the next due timestamp for the vehicle.
func (s *UsageBased) NextServiceDate(vehicle *models.Vehicle, last *models.Maintenance) time.Time {
	return nextFrom(s.now(), last, s.IntervalDays(vehicle))
}

// Due flags maintenance 3 days early for vehicles in operation and 7 days
// early otherwise.
func (s *UsageBased) Due(vehicle *models.Vehicle, last *models.Maintenance) bool {
	buffer := 7
	if vehicle.InOperation() {
		buffer = 3
	}
	next := s.NextServiceDate(vehicle, last)
	return !s.now().Before(next.Add(-time.Duration(buffer) * day))
}

// Kind returns the strategy identifier.
func (s *UsageBased) Kind() Kind {
	return KindUsageBased
}

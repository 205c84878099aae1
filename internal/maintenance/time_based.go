package maintenance

import (
	"time"

	"github.com/transitops/ptfms/internal/models"
)

// TimeBased schedules maintenance on a fixed calendar interval per vehicle
// type, regardless of usage.
type TimeBased struct {
	now func() time.Time
}

// NewTimeBased returns a time-based strategy using the wall clock.
func NewTimeBased() *TimeBased {
	return &TimeBased{now: time.Now}
}

// IntervalDays returns the calendar interval for the vehicle type.
func (s *TimeBased) IntervalDays(vehicle *models.Vehicle) int {
	switch vehicle.Type {
	case models.VehicleTypeBus:
		return 60
	case models.VehicleTypeVan:
		return 90
	case models.VehicleTypeTruck:
		return 45
	default:
		return 90
	}
}

// NextServiceDate returns the next due timestamp for the vehicle.
func (s *TimeBased) NextServiceDate(vehicle *models.Vehicle, last *models.Maintenance) time.Time {
	return nextFrom(s.now(), last, s.IntervalDays(vehicle))
}

// Due flags maintenance 7 days ahead of the next service date.
func (s *TimeBased) Due(vehicle *models.Vehicle, last *models.Maintenance) bool {
	next := s.NextServiceDate(vehicle, last)
	return !s.now().Before(next.Add(-7 * day))
}

// Kind returns the strategy identifier.
func (s *TimeBased) Kind() Kind {
	return KindTimeBased
}

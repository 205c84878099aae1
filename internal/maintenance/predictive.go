package maintenance

import (
	"time"

	"github.com/transitops/ptfms/internal/models"
)

// minPredictiveIntervalDays is the shortest interval Predictive will produce,
// whatever the age and type scaling say.
const minPredictiveIntervalDays = 14

// Predictive estimates wear from vehicle age and type: older vehicles get
// shorter intervals, and heavily stressed types (buses, trucks) are scaled
// down further.
type Predictive struct {
	now func() time.Time
}

// NewPredictive returns a predictive strategy using the wall clock.
func NewPredictive() *Predictive {
	return &Predictive{now: time.Now}
}

// IntervalDays derives the interval from vehicle age, scaled by type and
// floored at 14 days.
func (s *Predictive) IntervalDays(vehicle *models.Vehicle) int {
	age := vehicle.AgeYears(s.now())

	var base float64
	switch {
	case age > 10:
		base = 30
	case age > 5:
		base = 45
	case age > 2:
		base = 60
	default:
		base = 90
	}

	switch vehicle.Type {
	case models.VehicleTypeBus:
		base *= 0.8
	case models.VehicleTypeTruck:
		base *= 0.7
	case models.VehicleTypeVan:
		base *= 0.9
	}

	interval := int(base)
	if interval < minPredictiveIntervalDays {
		return minPredictiveIntervalDays
	}
	return interval
}

// NextServiceDate returns the next due timestamp for the vehicle.
func (s *Predictive) NextServiceDate(vehicle *models.Vehicle, last *models.Maintenance) time.Time {
	return nextFrom(s.now(), last, s.IntervalDays(vehicle))
}

// Due widens the early-warning window as the vehicle ages, so an old vehicle
// is flagged well before its raw interval elapses.
func (s *Predictive) Due(vehicle *models.Vehicle, last *models.Maintenance) bool {
	age := vehicle.AgeYears(s.now())

	var buffer int
	switch {
	case age > 10:
		buffer = 14
	case age > 5:
		buffer = 10
	default:
		buffer = 5
	}

	next := s.NextServiceDate(vehicle, last)
	return !s.now().Before(next.Add(-time.Duration(buffer) * day))
}

// Kind returns the strategy identifier.
func (s *Predictive) Kind() Kind {
	return KindPredictive
}

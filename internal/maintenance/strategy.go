package maintenance

import (
	"errors"
	"fmt"
	"time"

	"github.com/transitops/ptfms/internal/models"
)

// ErrUnknownKind is returned by ForKind for a kind outside the closed set.
var ErrUnknownKind = errors.New("unknown maintenance strategy kind")

// Kind identifies one of the scheduling strategies. The set is closed; ForKind
// switches over it exhaustively.
type Kind string

const (
	KindTimeBased  Kind = "time_based"
	KindUsageBased Kind = "usage_based"
	KindPredictive Kind = "predictive"
)

// Strategy computes maintenance due dates for a vehicle from its attributes
// and its most recent maintenance record. Implementations are side-effect
// free and deterministic for a fixed clock.
type Strategy interface {
	// NextServiceDate returns the timestamp the next maintenance falls due.
	// With no prior record the interval counts from the current time,
	// otherwise from the last service date.
	NextServiceDate(vehicle *models.Vehicle, last *models.Maintenance) time.Time
	// IntervalDays returns the maintenance interval for the vehicle in days.
	IntervalDays(vehicle *models.Vehicle) int
	// Due reports whether maintenance should be flagged now, applying the
	// strategy's early-warning buffer ahead of the next service date.
	Due(vehicle *models.Vehicle, last *models.Maintenance) bool
	// Kind returns the strategy identifier.
	Kind() Kind
}

// ForKind returns a strategy for the given kind using the wall clock.
func ForKind(kind Kind) (Strategy, error) {
	switch kind {
	case KindTimeBased:
		return NewTimeBased(), nil
	case KindUsageBased:
		return NewUsageBased(), nil
	case KindPredictive:
		return NewPredictive(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

const day = 24 * time.Hour

// nextFrom anchors the interval at the last service date when one exists and
// at now otherwise.
func nextFrom(now time.Time, last *models.Maintenance, intervalDays int) time.Time {
	anchor := now
	if last != nil {
		anchor = last.ServiceDate
	}
	return anchor.Add(time.Duration(intervalDays) * day)
}

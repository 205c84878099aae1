// Package alerts implements the alert fan-out: a subject holds the registered
// notification channels and broadcasts each alert to all of them in
// registration order.
package alerts

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/models"
	"go.uber.org/multierr"
)

// Observer is a notification channel invoked when an alert is raised.
type Observer interface {
	// Update delivers the alert over the channel. Delivery is
	// fire-and-forget; the error is reported but never retried.
	Update(ctx context.Context, alert *models.Alert) error
	// Name identifies the channel in logs and error messages.
	Name() string
}

// Subject holds an ordered, duplicate-free set of observers. Registration is
// idempotent by identity and removal of an absent observer is a no-op. The
// observer list is guarded by a mutex so a shared subject survives concurrent
// add/remove/notify.
type Subject struct {
	mu        sync.Mutex
	observers []Observer
}

// NewSubject returns a subject with no observers.
func NewSubject() *Subject {
	return &Subject{}
}

// AddObserver registers an observer. Adding the same instance twice keeps a
// single registration at its original position.
func (s *Subject) AddObserver(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.observers {
		if existing == o {
			return
		}
	}
	s.observers = append(s.observers, o)
}

// RemoveObserver unregisters an observer by identity. Removing an observer
// that was never added changes nothing.
func (s *Subject) RemoveObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Count returns the number of registered observers.
func (s *Subject) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Notify delivers the alert to every registered observer in registration
// order. A failing observer does not stop the remaining deliveries; all
// failures are collected into the returned error.
func (s *Subject) Notify(ctx context.Context, alert *models.Alert) error {
	s.mu.Lock()
	snapshot := make([]Observer, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.Unlock()

	var errs error
	for _, o := range snapshot {
		if err := o.Update(ctx, alert); err != nil {
			log.WithFields(log.Fields{
				"observer":   o.Name(),
				"vehicle_id": alert.VehicleID,
				"alert_type": alert.Type,
			}).WithError(err).Warn("alert delivery failed")
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", o.Name(), err))
		}
	}
	return errs
}

package alerts

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/models"
)

// SendFunc hands a formatted message to a delivery backend. The default
// backends only log the delivery; real transports are injected in production
// wiring.
type SendFunc func(ctx context.Context, recipient, subject, body string) error

// EmailObserver formats alerts as email messages.
type EmailObserver struct {
	Recipient string
	Send      SendFunc
}

// NewEmailObserver returns an email channel for the given recipient. A nil
// send func falls back to logging the delivery.
func NewEmailObserver(recipient string, send SendFunc) *EmailObserver {
	if send == nil {
		send = logEmailDelivery
	}
	return &EmailObserver{Recipient: recipient, Send: send}
}

// Update delivers the alert as an email.
func (o *EmailObserver) Update(ctx context.Context, alert *models.Alert) error {
	subject := fmt.Sprintf("[PTFMS] %s alert for vehicle %s", alert.Type, alert.VehicleID)
	body := fmt.Sprintf("Severity: %s\nRaised: %s\n\n%s",
		alert.Severity, alert.CreatedAt.Format("2006-01-02 15:04:05"), alert.Message)
	return o.Send(ctx, o.Recipient, subject, body)
}

// Name identifies the channel.
func (o *EmailObserver) Name() string {
	return "email:" + o.Recipient
}

func logEmailDelivery(ctx context.Context, recipient, subject, body string) error {
	log.WithFields(log.Fields{
		"channel":   "email",
		"recipient": recipient,
		"subject":   subject,
	}).Info("alert notification sent")
	return nil
}

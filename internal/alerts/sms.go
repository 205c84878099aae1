package alerts

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/models"
)

// smsMaxLen caps the message at a single SMS segment.
const smsMaxLen = 160

// SMSObserver formats alerts as short text messages.
type SMSObserver struct {
	PhoneNumber string
	Send        SendFunc
}

// NewSMSObserver returns an SMS channel for the given number. A nil send func
// falls back to logging the delivery.
func NewSMSObserver(phoneNumber string, send SendFunc) *SMSObserver {
	if send == nil {
		send = logSMSDelivery
	}
	return &SMSObserver{PhoneNumber: phoneNumber, Send: send}
}

// Update delivers the alert as a text message, truncated to one segment.
func (o *SMSObserver) Update(ctx context.Context, alert *models.Alert) error {
	text := fmt.Sprintf("PTFMS %s/%s vehicle %s: %s", alert.Type, alert.Severity, alert.VehicleID, alert.Message)
	if len(text) > smsMaxLen {
		text = text[:smsMaxLen-3] + "..."
	}
	return o.Send(ctx, o.PhoneNumber, "", text)
}

// Name identifies the channel.
func (o *SMSObserver) Name() string {
	return "sms:" + o.PhoneNumber
}

func logSMSDelivery(ctx context.Context, recipient, subject, body string) error {
	log.WithFields(log.Fields{
		"channel":   "sms",
		"recipient": recipient,
		"text":      body,
	}).Info("alert notification sent")
	return nil
}

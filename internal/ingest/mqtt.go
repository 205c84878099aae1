// Package ingest consumes the GPS position feed from the MQTT broker,
// persists each fix and runs the position alert rules over it.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/alerts"
	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
)

// positionMessage is the wire format published by vehicle GPS units.
type positionMessage struct {
	VehicleID string  `json:"vehicle_id"`
	Timestamp string  `json:"timestamp"` // RFC3339
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	SpeedKmh  float64 `json:"speed_kmh"`
	RouteID   string  `json:"route_id,omitempty"`
}

// Ingestor subscribes to the position topic and processes each fix.
type Ingestor struct {
	positions db.PositionCollection
	vehicles  db.VehicleCollection
	alertsDB  db.AlertCollection
	subject   *alerts.Subject
	rules     []alerts.PositionRule

	broker   string
	clientID string
	topic    string
	qos      byte

	client mqtt.Client
}

// Options configures an Ingestor.
type Options struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// New returns an ingestor wired to the given collections and alert subject.
func New(opts Options, positions db.PositionCollection, vehicles db.VehicleCollection,
	alertsDB db.AlertCollection, subject *alerts.Subject) *Ingestor {
	return &Ingestor{
		positions: positions,
		vehicles:  vehicles,
		alertsDB:  alertsDB,
		subject:   subject,
		rules:     alerts.DefaultPositionRules,
		broker:    opts.Broker,
		clientID:  opts.ClientID,
		topic:     opts.Topic,
		qos:       opts.QoS,
	}
}

// Start connects to the broker and subscribes to the position topic.
func (i *Ingestor) Start() error {
	clientOpts := mqtt.NewClientOptions().
		AddBroker(i.broker).
		SetClientID(i.clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	i.client = mqtt.NewClient(clientOpts)
	if token := i.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	token := i.client.Subscribe(i.topic, i.qos, func(_ mqtt.Client, msg mqtt.Message) {
		if err := i.handleMessage(context.Background(), msg.Payload()); err != nil {
			log.WithError(err).WithField("topic", msg.Topic()).Warn("position message dropped")
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", i.topic, token.Error())
	}

	log.WithFields(log.Fields{
		"broker": i.broker,
		"topic":  i.topic,
	}).Info("position ingest started")
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (i *Ingestor) Stop() {
	if i.client == nil {
		return
	}
	i.client.Unsubscribe(i.topic)
	i.client.Disconnect(250)
}

// handleMessage parses a position payload, persists the fix, evaluates the
// alert rules and fans out any raised alerts.
func (i *Ingestor) handleMessage(ctx context.Context, payload []byte) error {
	pos, err := parsePosition(payload)
	if err != nil {
		return err
	}

	vehicle, err := i.vehicles.FindVehicleByID(ctx, pos.VehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("position for unknown vehicle %s", pos.VehicleID)
		}
		return fmt.Errorf("vehicle lookup: %w", err)
	}

	if err := i.positions.InsertPosition(ctx, pos); err != nil {
		return fmt.Errorf("insert position: %w", err)
	}

	for _, alert := range alerts.EvaluatePosition(i.rules, pos, vehicle) {
		if err := i.alertsDB.InsertAlert(ctx, alert); err != nil {
			log.WithError(err).WithField("vehicle_id", alert.VehicleID).Error("failed to persist alert")
			continue
		}
		if err := i.subject.Notify(ctx, alert); err != nil {
			log.WithError(err).WithField("alert_id", alert.ID.Hex()).Warn("alert fan-out incomplete")
		}
	}
	return nil
}

// parsePosition validates and converts a wire payload into a Position.
func parsePosition(payload []byte) (*models.Position, error) {
	var msg positionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("invalid position payload: %w", err)
	}
	if msg.VehicleID == "" {
		return nil, errors.New("position payload missing vehicle_id")
	}

	ts := time.Now()
	if msg.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, msg.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid position timestamp: %w", err)
		}
		ts = parsed
	}

	loc := models.Location{Lat: msg.Lat, Lon: msg.Lon}
	if !loc.Valid() {
		return nil, fmt.Errorf("position coordinates out of range: %f,%f", msg.Lat, msg.Lon)
	}

	return &models.Position{
		VehicleID: msg.VehicleID,
		Timestamp: ts,
		Location:  loc,
		SpeedKmh:  msg.SpeedKmh,
		RouteID:   msg.RouteID,
	}, nil
}

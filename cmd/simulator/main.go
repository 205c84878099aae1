// The simulator publishes synthetic GPS fixes for a handful of vehicles over
// MQTT, feeding the position ingest during development.
package main

import (
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/config"
)

type location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type positionMessage struct {
	VehicleID string  `json:"vehicle_id"`
	Timestamp string  `json:"timestamp"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	SpeedKmh  float64 `json:"speed_kmh"`
	RouteID   string  `json:"route_id"`
}

// Waypoints for a few downtown transit routes.
var routes = map[string][]location{
	"R1": {
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: 40.7180, Lon: -74.0010},
		{Lat: 40.7230, Lon: -73.9950},
		{Lat: 40.7290, Lon: -73.9900},
	},
	"R2": {
		{Lat: 40.7060, Lon: -74.0090},
		{Lat: 40.7020, Lon: -74.0150},
		{Lat: 40.6980, Lon: -74.0180},
	},
	"R3": {
		{Lat: 40.7306, Lon: -73.9866},
		{Lat: 40.7350, Lon: -73.9800},
		{Lat: 40.7400, Lon: -73.9760},
		{Lat: 40.7450, Lon: -73.9700},
	},
}

type vehicleState struct {
	vehicleID string
	routeID   string
	waypoint  int
	position  location
	speedKmh  float64
}

// jitter shifts a location by up to the given number of meters.
func jitter(base location, meters float64) location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func (s *vehicleState) advance() {
	waypoints := routes[s.routeID]
	s.waypoint = (s.waypoint + 1) % len(waypoints)
	s.position = jitter(waypoints[s.waypoint], 30)

	// Mostly city speeds, with the occasional speeder to exercise the rules.
	s.speedKmh = 20 + rand.Float64()*40
	if rand.Float64() < 0.05 {
		s.speedKmh = 95 + rand.Float64()*20
	}
}

func (s *vehicleState) message() positionMessage {
	return positionMessage{
		VehicleID: s.vehicleID,
		Timestamp: time.Now().Format(time.RFC3339),
		Lat:       s.position.Lat,
		Lon:       s.position.Lon,
		SpeedKmh:  s.speedKmh,
		RouteID:   s.routeID,
	}
}

func vehicleIDs() []string {
	var ids []string
	for _, id := range strings.Split(os.Getenv("SIM_VEHICLE_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	cfg := config.Load()

	ids := vehicleIDs()
	if len(ids) == 0 {
		log.Fatal("SIM_VEHICLE_IDS must list at least one vehicle id")
	}

	intervalSec := 5
	if v := os.Getenv("SIM_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			intervalSec = n
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("ptfms-simulator").
		SetConnectRetry(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	routeIDs := []string{"R1", "R2", "R3"}
	fleet := make([]*vehicleState, 0, len(ids))
	for i, id := range ids {
		routeID := routeIDs[i%len(routeIDs)]
		state := &vehicleState{vehicleID: id, routeID: routeID}
		state.advance()
		fleet = append(fleet, state)
	}

	log.WithFields(log.Fields{
		"vehicles": len(fleet),
		"broker":   cfg.MQTTBroker,
		"topic":    cfg.MQTTTopic,
		"interval": intervalSec,
	}).Info("simulator started")

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			for _, state := range fleet {
				state.advance()
				payload, err := json.Marshal(state.message())
				if err != nil {
					log.WithError(err).Error("failed to marshal position")
					continue
				}
				token := client.Publish(cfg.MQTTTopic, byte(cfg.MQTTQoS), false, payload)
				token.Wait()
				if token.Error() != nil {
					log.WithError(token.Error()).WithField("vehicle_id", state.vehicleID).Warn("publish failed")
					continue
				}
				log.WithFields(log.Fields{
					"vehicle_id": state.vehicleID,
					"route":      state.routeID,
					"speed_kmh":  state.speedKmh,
				}).Debug("position published")
			}
		case <-stop:
			log.Info("simulator stopped")
			return
		}
	}
}

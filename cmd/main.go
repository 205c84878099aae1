package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/alerts"
	"github.com/transitops/ptfms/internal/command"
	"github.com/transitops/ptfms/internal/config"
	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/handlers"
	"github.com/transitops/ptfms/internal/ingest"
	"github.com/transitops/ptfms/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	records := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenance"), Vehicles: vehicles}
	fuelLogs := &db.MongoFuelLogCollection{Collection: database.Collection("fuel_logs"), Vehicles: vehicles}
	alertStore := &db.MongoAlertCollection{Collection: database.Collection("alerts")}
	positions := &db.MongoPositionCollection{Collection: database.Collection("positions"), Vehicles: vehicles}

	// Notification channels
	subject := alerts.NewSubject()
	if cfg.AlertEmail != "" {
		subject.AddObserver(alerts.NewEmailObserver(cfg.AlertEmail, nil))
	}
	if cfg.AlertSMS != "" {
		subject.AddObserver(alerts.NewSMSObserver(cfg.AlertSMS, nil))
	}

	invoker := command.NewInvoker()

	// GPS position feed
	ingestor := ingest.New(ingest.Options{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Topic:    cfg.MQTTTopic,
		QoS:      byte(cfg.MQTTQoS),
	}, positions, vehicles, alertStore, subject)
	if err := ingestor.Start(); err != nil {
		log.WithError(err).Fatal("failed to start position ingest")
	}
	defer ingestor.Stop()

	mux := http.NewServeMux()
	handlers.NewVehicleHandler(vehicles, invoker).RegisterRoutes(mux)
	handlers.NewMaintenanceHandler(records, vehicles, alertStore, subject, invoker).RegisterRoutes(mux)
	handlers.NewFuelLogHandler(fuelLogs, vehicles, alertStore, subject, invoker).RegisterRoutes(mux)
	handlers.NewAlertHandler(alertStore, subject).RegisterRoutes(mux)
	handlers.NewPositionHandler(positions).RegisterRoutes(mux)
	handlers.NewUndoHandler(invoker).RegisterRoutes(mux)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: middleware.RequestLogger(mux),
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

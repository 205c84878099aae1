package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/alerts"
	"github.com/transitops/ptfms/internal/command"
	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// FuelLogHandler serves the fuel log endpoints. Every recorded entry is
// checked against the fuel alert rules.
type FuelLogHandler struct {
	logs     db.FuelLogCollection
	vehicles db.VehicleCollection
	alertsDB db.AlertCollection
	subject  *alerts.Subject
	invoker  *command.Invoker
}

// NewFuelLogHandler creates a new fuel log handler.
func NewFuelLogHandler(logs db.FuelLogCollection, vehicles db.VehicleCollection,
	alertsDB db.AlertCollection, subject *alerts.Subject, invoker *command.Invoker) *FuelLogHandler {
	return &FuelLogHandler{
		logs:     logs,
		vehicles: vehicles,
		alertsDB: alertsDB,
		subject:  subject,
		invoker:  invoker,
	}
}

// RegisterRoutes attaches the fuel log endpoints to the mux.
func (h *FuelLogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/fuellogs", h.Create)
	mux.HandleFunc("GET /api/fuellogs", h.List)
	mux.HandleFunc("GET /api/fuellogs/{id}", h.Get)
}

// Get returns a single fuel log entry by id.
func (h *FuelLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.logs.FindFuelLogByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fuel log not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid fuel log id")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Create records a fuel log entry and evaluates the fuel rules over it.
func (h *FuelLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var entry models.FuelLog
	if err := json.Unmarshal(body, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if entry.VehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}
	if entry.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), entry.VehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	cmd := command.NewAddFuelLog(h.logs, &entry)
	if err := h.invoker.Run(r.Context(), cmd); err != nil {
		if errors.Is(err, db.ErrUnknownVehicle) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to record fuel log")
		return
	}

	for _, alert := range alerts.EvaluateFuelLog(alerts.DefaultFuelRules, &entry, vehicle) {
		if err := h.alertsDB.InsertAlert(r.Context(), alert); err != nil {
			log.WithError(err).WithField("vehicle_id", alert.VehicleID).Error("failed to persist fuel alert")
			continue
		}
		if err := h.subject.Notify(r.Context(), alert); err != nil {
			log.WithError(err).WithField("alert_id", alert.ID.Hex()).Warn("alert fan-out incomplete")
		}
	}

	writeJSON(w, http.StatusCreated, entry)
}

// List returns fuel log entries, optionally filtered by vehicle.
func (h *FuelLogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}

	cursor, err := h.logs.FindFuelLogs(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query fuel logs")
		return
	}
	defer cursor.Close(r.Context())

	entries := []models.FuelLog{}
	if err := cursor.All(r.Context(), &entries); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decode fuel logs")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

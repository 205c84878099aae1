package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/alerts"
	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// AlertHandler serves the alert endpoints and owns the fan-out for manually
// raised alerts.
type AlertHandler struct {
	alertsDB db.AlertCollection
	subject  *alerts.Subject
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alertsDB db.AlertCollection, subject *alerts.Subject) *AlertHandler {
	return &AlertHandler{alertsDB: alertsDB, subject: subject}
}

// RegisterRoutes attaches the alert endpoints to the mux.
func (h *AlertHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/alerts", h.Raise)
	mux.HandleFunc("GET /api/alerts", h.List)
	mux.HandleFunc("GET /api/alerts/{id}", h.Get)
	mux.HandleFunc("POST /api/alerts/{id}/resolve", h.Resolve)
}

// Get returns a single alert by id.
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alertsDB.FindAlertByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// Raise persists a manually raised alert and fans it out to the registered
// channels.
func (h *AlertHandler) Raise(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var alert models.Alert
	if err := json.Unmarshal(body, &alert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if alert.VehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}
	if !models.IsValidAlertType(alert.Type) {
		writeError(w, http.StatusBadRequest, "invalid alert type")
		return
	}
	if alert.Severity == "" {
		alert.Severity = models.SeverityMedium
	}
	alert.Status = models.AlertStatusOpen
	alert.CreatedAt = time.Now()

	if err := h.alertsDB.InsertAlert(r.Context(), &alert); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create alert")
		return
	}

	if err := h.subject.Notify(r.Context(), &alert); err != nil {
		log.WithError(err).WithField("alert_id", alert.ID.Hex()).Warn("alert fan-out incomplete")
	}

	writeJSON(w, http.StatusCreated, alert)
}

// List returns alerts, optionally filtered by vehicle, type or status.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if alertType := r.URL.Query().Get("type"); alertType != "" {
		filter["type"] = alertType
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.alertsDB.FindAlerts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query alerts")
		return
	}
	defer cursor.Close(r.Context())

	list := []models.Alert{}
	if err := cursor.All(r.Context(), &list); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decode alerts")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Resolve marks an open alert as resolved.
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.alertsDB.ResolveAlert(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/transitops/ptfms/internal/alerts"
	"github.com/transitops/ptfms/internal/command"
	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/maintenance"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaintenanceHandler serves maintenance scheduling and due-check endpoints.
type MaintenanceHandler struct {
	records  db.MaintenanceCollection
	vehicles db.VehicleCollection
	alertsDB db.AlertCollection
	subject  *alerts.Subject
	invoker  *command.Invoker
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(records db.MaintenanceCollection, vehicles db.VehicleCollection,
	alertsDB db.AlertCollection, subject *alerts.Subject, invoker *command.Invoker) *MaintenanceHandler {
	return &MaintenanceHandler{
		records:  records,
		vehicles: vehicles,
		alertsDB: alertsDB,
		subject:  subject,
		invoker:  invoker,
	}
}

// RegisterRoutes attaches the maintenance endpoints to the mux.
func (h *MaintenanceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/maintenance", h.Schedule)
	mux.HandleFunc("GET /api/maintenance", h.List)
	mux.HandleFunc("GET /api/maintenance/due", h.DueCheck)
	mux.HandleFunc("GET /api/maintenance/{id}", h.Get)
}

// Get returns a single maintenance record by id.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.records.FindMaintenanceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "maintenance record not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid maintenance id")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type scheduleRequest struct {
	VehicleID   string  `json:"vehicle_id"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	ServiceDate string  `json:"service_date,omitempty"` // RFC3339, defaults to now
	Strategy    string  `json:"strategy,omitempty"`     // defaults to time_based
}

// Schedule creates a pending maintenance record. The selected strategy
// computes the next service date from the vehicle and its last record.
func (h *MaintenanceHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req scheduleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.VehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), req.VehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	strategy, err := strategyFromQueryOr(req.Strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	serviceDate := time.Now()
	if req.ServiceDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ServiceDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid service_date")
			return
		}
		serviceDate = parsed
	}

	last, err := h.lastMaintenance(r.Context(), req.VehicleID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query maintenance history")
		return
	}

	record := models.Maintenance{
		VehicleID:       req.VehicleID,
		ServiceDate:     serviceDate,
		NextServiceDate: strategy.NextServiceDate(vehicle, last),
		Description:     req.Description,
		Cost:            req.Cost,
		Status:          models.MaintenanceStatusPending,
	}

	cmd := command.NewScheduleMaintenance(h.records, &record)
	if err := h.invoker.Run(r.Context(), cmd); err != nil {
		if errors.Is(err, db.ErrUnknownVehicle) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to schedule maintenance")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// List returns maintenance records, optionally filtered by vehicle.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := h.records.FindMaintenance(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query maintenance records")
		return
	}
	defer cursor.Close(r.Context())

	records := []models.Maintenance{}
	if err := cursor.All(r.Context(), &records); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decode maintenance records")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

type dueResponse struct {
	VehicleID       string    `json:"vehicle_id"`
	Strategy        string    `json:"strategy"`
	Due             bool      `json:"due"`
	IntervalDays    int       `json:"interval_days"`
	NextServiceDate time.Time `json:"next_service_date"`
}

// DueCheck evaluates the selected strategy for a vehicle and raises a
// maintenance alert through the observer fan-out when due.
func (h *MaintenanceHandler) DueCheck(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	strategy, err := strategyFromQueryOr(r.URL.Query().Get("strategy"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	last, err := h.lastMaintenance(r.Context(), vehicleID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query maintenance history")
		return
	}

	resp := dueResponse{
		VehicleID:       vehicleID,
		Strategy:        string(strategy.Kind()),
		Due:             strategy.Due(vehicle, last),
		IntervalDays:    strategy.IntervalDays(vehicle),
		NextServiceDate: strategy.NextServiceDate(vehicle, last),
	}

	if resp.Due {
		h.raiseDueAlert(r.Context(), vehicle, resp.NextServiceDate)
	}

	writeJSON(w, http.StatusOK, resp)
}

// lastMaintenance returns the most recent record for the vehicle, or nil when
// it has no history.
func (h *MaintenanceHandler) lastMaintenance(ctx context.Context, vehicleID string) (*models.Maintenance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "service_date", Value: -1}}).SetLimit(1)
	cursor, err := h.records.FindMaintenance(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Maintenance
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// raiseDueAlert persists a maintenance alert and fans it out. Failures are
// logged rather than failing the due check itself.
func (h *MaintenanceHandler) raiseDueAlert(ctx context.Context, vehicle *models.Vehicle, next time.Time) {
	alert := &models.Alert{
		VehicleID: vehicle.ID.Hex(),
		Type:      models.AlertTypeMaintenance,
		Severity:  models.SeverityHigh,
		Message:   "maintenance due by " + next.Format("2006-01-02"),
		Status:    models.AlertStatusOpen,
		CreatedAt: time.Now(),
	}
	if err := h.alertsDB.InsertAlert(ctx, alert); err != nil {
		log.WithError(err).WithField("vehicle_id", alert.VehicleID).Error("failed to persist maintenance alert")
		return
	}
	if err := h.subject.Notify(ctx, alert); err != nil {
		log.WithError(err).WithField("alert_id", alert.ID.Hex()).Warn("alert fan-out incomplete")
	}
}

// strategyFromQueryOr resolves a strategy name, defaulting to time based.
func strategyFromQueryOr(name string) (maintenance.Strategy, error) {
	if name == "" {
		return maintenance.NewTimeBased(), nil
	}
	return maintenance.ForKind(maintenance.Kind(name))
}

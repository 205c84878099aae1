package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/transitops/ptfms/internal/command"
	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// VehicleHandler serves the vehicle CRUD endpoints. Registration goes through
// the reversible command layer so the most recent create can be undone.
type VehicleHandler struct {
	vehicles db.VehicleCollection
	invoker  *command.Invoker
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(vehicles db.VehicleCollection, invoker *command.Invoker) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, invoker: invoker}
}

// RegisterRoutes attaches the vehicle endpoints to the mux.
func (h *VehicleHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/vehicles", h.Create)
	mux.HandleFunc("GET /api/vehicles", h.List)
	mux.HandleFunc("GET /api/vehicles/{id}", h.Get)
	mux.HandleFunc("PUT /api/vehicles/{id}", h.Update)
	mux.HandleFunc("DELETE /api/vehicles/{id}", h.Delete)
}

// Create registers a new vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if vehicle.VIN == "" || vehicle.Type == "" {
		writeError(w, http.StatusBadRequest, "vin and type are required")
		return
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusAvailable
	}

	cmd := command.NewAddVehicle(h.vehicles, &vehicle)
	if err := h.invoker.Run(r.Context(), cmd); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create vehicle")
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

// List returns all vehicles, optionally filtered by status or type.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if vtype := r.URL.Query().Get("type"); vtype != "" {
		filter["type"] = vtype
	}

	cursor, err := h.vehicles.FindVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query vehicles")
		return
	}
	defer cursor.Close(r.Context())

	vehicles := []models.Vehicle{}
	if err := cursor.All(r.Context(), &vehicles); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decode vehicles")
		return
	}

	writeJSON(w, http.StatusOK, vehicles)
}

// Get returns a single vehicle by id.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Update mutates a vehicle's status and current route.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var updateReq struct {
		Status       *string `json:"status"`
		CurrentRoute *string `json:"current_route"`
	}
	if err := json.Unmarshal(body, &updateReq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if updateReq.Status != nil {
		vehicle.Status = *updateReq.Status
	}
	if updateReq.CurrentRoute != nil {
		vehicle.CurrentRoute = *updateReq.CurrentRoute
	}

	if err := h.vehicles.UpdateVehicle(r.Context(), id, *vehicle); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update vehicle")
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// Delete removes a vehicle by id.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.vehicles.DeleteVehicle(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete vehicle")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

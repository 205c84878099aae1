package handlers

import (
	"errors"
	"net/http"

	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// positionHistoryLimit caps a history query to keep responses bounded.
const positionHistoryLimit = 500

// PositionHandler serves read access to the GPS position feed. Writes arrive
// through the MQTT ingest, not over HTTP.
type PositionHandler struct {
	positions db.PositionCollection
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(positions db.PositionCollection) *PositionHandler {
	return &PositionHandler{positions: positions}
}

// RegisterRoutes attaches the position endpoints to the mux.
func (h *PositionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/positions", h.History)
	mux.HandleFunc("GET /api/positions/latest", h.Latest)
}

// History returns recent fixes for a vehicle, newest first.
func (h *PositionHandler) History(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(positionHistoryLimit)
	cursor, err := h.positions.FindPositions(r.Context(), bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query positions")
		return
	}
	defer cursor.Close(r.Context())

	fixes := []models.Position{}
	if err := cursor.All(r.Context(), &fixes); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decode positions")
		return
	}

	writeJSON(w, http.StatusOK, fixes)
}

// Latest returns the most recent fix for a vehicle.
func (h *PositionHandler) Latest(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	position, err := h.positions.FindLatestPosition(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no position reported for vehicle")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to query position")
		return
	}

	writeJSON(w, http.StatusOK, position)
}

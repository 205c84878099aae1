package handlers

import (
	"net/http"

	"github.com/transitops/ptfms/internal/command"
)

// UndoHandler exposes the command history: the most recent create/schedule
// operation can be reverted.
type UndoHandler struct {
	invoker *command.Invoker
}

// NewUndoHandler creates a new undo handler.
func NewUndoHandler(invoker *command.Invoker) *UndoHandler {
	return &UndoHandler{invoker: invoker}
}

// RegisterRoutes attaches the undo endpoint to the mux.
func (h *UndoHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/undo", h.UndoLast)
}

// UndoLast reverts the most recently executed command.
func (h *UndoHandler) UndoLast(w http.ResponseWriter, r *http.Request) {
	status, err := h.invoker.UndoLast(r.Context())
	switch status {
	case command.UndoNotExecuted:
		writeError(w, http.StatusConflict, "nothing to undo")
	case command.UndoFailed:
		writeError(w, http.StatusInternalServerError, "undo failed: "+err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    status.String(),
			"remaining": h.invoker.Depth(),
		})
	}
}

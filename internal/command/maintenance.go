package command

import (
	"context"

	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleMaintenanceCommand persists a pending maintenance record; undo
// deletes it again.
type ScheduleMaintenanceCommand struct {
	records db.MaintenanceCollection
	record  *models.Maintenance

	insertedID primitive.ObjectID
}

// NewScheduleMaintenance returns a command that will insert the given record.
func NewScheduleMaintenance(records db.MaintenanceCollection, record *models.Maintenance) *ScheduleMaintenanceCommand {
	return &ScheduleMaintenanceCommand{records: records, record: record}
}

// Execute inserts the maintenance record and captures its generated id.
func (c *ScheduleMaintenanceCommand) Execute(ctx context.Context) error {
	if err := c.records.InsertMaintenance(ctx, c.record); err != nil {
		return err
	}
	c.insertedID = c.record.ID
	return nil
}

// Undo deletes the record inserted by Execute.
func (c *ScheduleMaintenanceCommand) Undo(ctx context.Context) (UndoStatus, error) {
	if c.insertedID.IsZero() {
		return UndoNotExecuted, nil
	}
	if err := c.records.DeleteMaintenance(ctx, c.insertedID.Hex()); err != nil {
		return UndoFailed, err
	}
	c.insertedID = primitive.NilObjectID
	return UndoDone, nil
}

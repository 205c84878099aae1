package command

import (
	"context"

	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddFuelLogCommand persists a fuel log entry; undo deletes it again.
type AddFuelLogCommand struct {
	logs  db.FuelLogCollection
	entry *models.FuelLog

	insertedID primitive.ObjectID
}

// NewAddFuelLog returns a command that will insert the given entry.
func NewAddFuelLog(logs db.FuelLogCollection, entry *models.FuelLog) *AddFuelLogCommand {
	return &AddFuelLogCommand{logs: logs, entry: entry}
}

// Execute inserts the fuel log entry and captures its generated id.
func (c *AddFuelLogCommand) Execute(ctx context.Context) error {
	if err := c.logs.InsertFuelLog(ctx, c.entry); err != nil {
		return err
	}
	c.insertedID = c.entry.ID
	return nil
}

// Undo deletes the entry inserted by Execute.
func (c *AddFuelLogCommand) Undo(ctx context.Context) (UndoStatus, error) {
	if c.insertedID.IsZero() {
		return UndoNotExecuted, nil
	}
	if err := c.logs.DeleteFuelLog(ctx, c.insertedID.Hex()); err != nil {
		return UndoFailed, err
	}
	c.insertedID = primitive.NilObjectID
	return UndoDone, nil
}

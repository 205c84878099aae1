package command

import (
	"context"

	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddVehicleCommand registers a vehicle; undo deletes it again.
type AddVehicleCommand struct {
	vehicles db.VehicleCollection
	vehicle  *models.Vehicle

	insertedID primitive.ObjectID
}

// NewAddVehicle returns a command that will insert the given vehicle.
func NewAddVehicle(vehicles db.VehicleCollection, vehicle *models.Vehicle) *AddVehicleCommand {
	return &AddVehicleCommand{vehicles: vehicles, vehicle: vehicle}
}

// Execute inserts the vehicle and captures its generated id.
func (c *AddVehicleCommand) Execute(ctx context.Context) error {
	if err := c.vehicles.InsertVehicle(ctx, c.vehicle); err != nil {
		return err
	}
	c.insertedID = c.vehicle.ID
	return nil
}

// Undo deletes the vehicle inserted by Execute.
func (c *AddVehicleCommand) Undo(ctx context.Context) (UndoStatus, error) {
	if c.insertedID.IsZero() {
		return UndoNotExecuted, nil
	}
	if err := c.vehicles.DeleteVehicle(ctx, c.insertedID.Hex()); err != nil {
		return UndoFailed, err
	}
	c.insertedID = primitive.NilObjectID
	return UndoDone, nil
}

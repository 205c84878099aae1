package db

import (
	"context"

	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Cursor defines the interface for reading query results.
type Cursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// VehicleCollection defines the interface for vehicle data operations.
// InsertVehicle assigns the generated id into the record on success.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
}

// MaintenanceCollection defines the interface for maintenance record operations.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, record *models.Maintenance) error
	FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error)
	FindMaintenance(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	DeleteMaintenance(ctx context.Context, id string) error
}

// FuelLogCollection defines the interface for fuel log operations.
type FuelLogCollection interface {
	InsertFuelLog(ctx context.Context, entry *models.FuelLog) error
	FindFuelLogByID(ctx context.Context, id string) (*models.FuelLog, error)
	FindFuelLogs(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	DeleteFuelLog(ctx context.Context, id string) error
}

// AlertCollection defines the interface for alert operations.
type AlertCollection interface {
	InsertAlert(ctx context.Context, alert *models.Alert) error
	FindAlertByID(ctx context.Context, id string) (*models.Alert, error)
	FindAlerts(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	ResolveAlert(ctx context.Context, id string) error
	DeleteAlert(ctx context.Context, id string) error
}

// PositionCollection defines the interface for GPS position operations.
type PositionCollection interface {
	InsertPosition(ctx context.Context, position *models.Position) error
	FindPositions(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	FindLatestPosition(ctx context.Context, vehicleID string) (*models.Position, error)
}

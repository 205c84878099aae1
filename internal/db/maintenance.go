package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
// When Vehicles is set, inserts verify the referenced vehicle exists.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
	Vehicles   VehicleCollection
}

// InsertMaintenance inserts a maintenance record and assigns the generated id.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, record *models.Maintenance) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if err := checkVehicleExists(ctx, c.Vehicles, record.VehicleID); err != nil {
		return err
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	result, err := c.Collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}
	return nil
}

// FindMaintenanceByID finds a maintenance record by its ID.
func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance ID: %w", err)
	}
	var record models.Maintenance
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindMaintenance queries maintenance records from the collection.
func (c *MongoMaintenanceCollection) FindMaintenance(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// DeleteMaintenance deletes a maintenance record by its ID.
func (c *MongoMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// checkVehicleExists enforces the vehicle reference invariant at the
// persistence boundary. A nil vehicles collection skips the check.
func checkVehicleExists(ctx context.Context, vehicles VehicleCollection, vehicleID string) error {
	if vehicles == nil {
		return nil
	}
	_, err := vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownVehicle
		}
		return err
	}
	return nil
}

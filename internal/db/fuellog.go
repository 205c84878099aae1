package db

import (
	"context"
	"fmt"
	"time"

	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFuelLogCollection implements FuelLogCollection for MongoDB.
// When Vehicles is set, inserts verify the referenced vehicle exists.
type MongoFuelLogCollection struct {
	Collection *mongo.Collection
	Vehicles   VehicleCollection
}

// InsertFuelLog inserts a fuel log entry and assigns the generated id.
func (c *MongoFuelLogCollection) InsertFuelLog(ctx context.Context, entry *models.FuelLog) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if err := checkVehicleExists(ctx, c.Vehicles, entry.VehicleID); err != nil {
		return err
	}
	entry.CreatedAt = time.Now()
	result, err := c.Collection.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}
	return nil
}

// FindFuelLogByID finds a fuel log entry by its ID.
func (c *MongoFuelLogCollection) FindFuelLogByID(ctx context.Context, id string) (*models.FuelLog, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid fuel log ID: %w", err)
	}
	var entry models.FuelLog
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindFuelLogs queries fuel log entries from the collection.
func (c *MongoFuelLogCollection) FindFuelLogs(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// DeleteFuelLog deletes a fuel log entry by its ID.
func (c *MongoFuelLogCollection) DeleteFuelLog(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid fuel log ID: %w", err)
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

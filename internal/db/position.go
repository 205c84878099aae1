package db

import (
	"context"
	"fmt"

	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPositionCollection implements PositionCollection for MongoDB.
// When Vehicles is set, inserts verify the referenced vehicle exists.
type MongoPositionCollection struct {
	Collection *mongo.Collection
	Vehicles   VehicleCollection
}

// InsertPosition inserts a GPS position and assigns the generated id.
func (c *MongoPositionCollection) InsertPosition(ctx context.Context, position *models.Position) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if err := checkVehicleExists(ctx, c.Vehicles, position.VehicleID); err != nil {
		return err
	}
	result, err := c.Collection.InsertOne(ctx, position)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		position.ID = oid
	}
	return nil
}

// FindPositions queries position records from the collection.
func (c *MongoPositionCollection) FindPositions(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// FindLatestPosition returns the most recent fix for a vehicle.
func (c *MongoPositionCollection) FindLatestPosition(ctx context.Context, vehicleID string) (*models.Position, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var position models.Position
	err := c.Collection.FindOne(ctx, bson.M{"vehicle_id": vehicleID}, opts).Decode(&position)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

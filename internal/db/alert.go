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

// MongoAlertCollection implements AlertCollection for MongoDB.
type MongoAlertCollection struct {
	Collection *mongo.Collection
}

// InsertAlert inserts an alert and assigns the generated id.
func (c *MongoAlertCollection) InsertAlert(ctx context.Context, alert *models.Alert) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusOpen
	}
	result, err := c.Collection.InsertOne(ctx, alert)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		alert.ID = oid
	}
	return nil
}

// FindAlertByID finds an alert by its ID.
func (c *MongoAlertCollection) FindAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid alert ID: %w", err)
	}
	var alert models.Alert
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindAlerts queries alert records from the collection.
func (c *MongoAlertCollection) FindAlerts(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// ResolveAlert marks an open alert as resolved.
func (c *MongoAlertCollection) ResolveAlert(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid alert ID: %w", err)
	}
	now := time.Now()
	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": models.AlertStatusResolved, "resolved_at": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAlert deletes an alert by its ID.
func (c *MongoAlertCollection) DeleteAlert(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid alert ID: %w", err)
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

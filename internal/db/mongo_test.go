package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestConnectMongo_BadURI(t *testing.T) {
	os.Setenv("MONGO_URI", "mongodb://bad:uri")
	client, err := ConnectMongo()
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestInsertVehicle_NilCollection(t *testing.T) {
	coll := &MongoVehicleCollection{Collection: nil}
	err := coll.InsertVehicle(context.Background(), &models.Vehicle{})
	if err == nil {
		t.Error("expected error when collection is nil")
	}
}

func TestInsertPosition_NilCollection(t *testing.T) {
	coll := &MongoPositionCollection{Collection: nil}
	err := coll.InsertPosition(context.Background(), &models.Position{})
	if err == nil {
		t.Error("expected error when collection is nil")
	}
}

func TestFindVehicleByID_InvalidHex(t *testing.T) {
	coll := &MongoVehicleCollection{Collection: &mongo.Collection{}}
	_, err := coll.FindVehicleByID(context.Background(), "not-a-hex-id")
	if err == nil {
		t.Error("expected error for malformed id")
	}
}

type stubVehicleLookup struct {
	err error
}

func (s *stubVehicleLookup) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return nil
}

func (s *stubVehicleLookup) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Vehicle{}, nil
}

func (s *stubVehicleLookup) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	return nil, nil
}

func (s *stubVehicleLookup) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	return nil
}

func (s *stubVehicleLookup) DeleteVehicle(ctx context.Context, id string) error {
	return nil
}

func TestCheckVehicleExists(t *testing.T) {
	ctx := context.Background()

	if err := checkVehicleExists(ctx, nil, "any"); err != nil {
		t.Errorf("nil vehicles collection should skip the check, got %v", err)
	}

	if err := checkVehicleExists(ctx, &stubVehicleLookup{}, "known"); err != nil {
		t.Errorf("existing vehicle should pass, got %v", err)
	}

	err := checkVehicleExists(ctx, &stubVehicleLookup{err: ErrNotFound}, "missing")
	if !errors.Is(err, ErrUnknownVehicle) {
		t.Errorf("missing vehicle should map to ErrUnknownVehicle, got %v", err)
	}
}

// Integration test (requires running MongoDB)
func TestInsertVehicle_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "mongodb://bad:uri" {
		t.Skip("MONGO_URI not set, skipping integration test")
		return
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("failed to ping: %v, skipping integration test", err)
		return
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "ptfms"
	}
	coll := &MongoVehicleCollection{Collection: client.Database(dbName).Collection("vehicles")}
	vehicle := models.Vehicle{VIN: "TEST-VIN", Type: models.VehicleTypeBus, Status: models.VehicleStatusAvailable}
	if err := coll.InsertVehicle(context.Background(), &vehicle); err != nil {
		t.Errorf("expected insert to succeed, got error: %v", err)
	}
	if vehicle.ID.IsZero() {
		t.Error("expected generated id to be assigned")
	}
}

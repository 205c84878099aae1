package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/transitops/ptfms/internal/alerts"
	"github.com/transitops/ptfms/internal/command"
	"github.com/transitops/ptfms/internal/db"
	"github.com/transitops/ptfms/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sliceCursor replays a fixed result set through the Cursor interface.
type sliceCursor struct {
	items interface{}
}

func (c *sliceCursor) All(ctx context.Context, out interface{}) error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *sliceCursor) Close(ctx context.Context) error {
	return nil
}

type memVehicles struct {
	byID map[string]*models.Vehicle

	deletedIDs []string
}

func newMemVehicles() *memVehicles {
	return &memVehicles{byID: map[string]*models.Vehicle{}}
}

func (m *memVehicles) add(v *models.Vehicle) string {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	m.byID[v.ID.Hex()] = v
	return v.ID.Hex()
}

func (m *memVehicles) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	m.add(vehicle)
	return nil
}

func (m *memVehicles) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	v, ok := m.byID[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return v, nil
}

func (m *memVehicles) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.Cursor, error) {
	list := []models.Vehicle{}
	for _, v := range m.byID {
		list = append(list, *v)
	}
	return &sliceCursor{items: list}, nil
}

func (m *memVehicles) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	if _, ok := m.byID[id]; !ok {
		return db.ErrNotFound
	}
	m.byID[id] = &vehicle
	return nil
}

func (m *memVehicles) DeleteVehicle(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.byID, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

type memMaintenance struct {
	records []models.Maintenance
}

func (m *memMaintenance) InsertMaintenance(ctx context.Context, record *models.Maintenance) error {
	record.ID = primitive.NewObjectID()
	m.records = append(m.records, *record)
	return nil
}

func (m *memMaintenance) FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error) {
	return nil, db.ErrNotFound
}

func (m *memMaintenance) FindMaintenance(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.Cursor, error) {
	return &sliceCursor{items: m.records}, nil
}

func (m *memMaintenance) DeleteMaintenance(ctx context.Context, id string) error {
	for i, r := range m.records {
		if r.ID.Hex() == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

type memFuelLogs struct {
	entries []models.FuelLog
}

func (m *memFuelLogs) InsertFuelLog(ctx context.Context, entry *models.FuelLog) error {
	entry.ID = primitive.NewObjectID()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memFuelLogs) FindFuelLogByID(ctx context.Context, id string) (*models.FuelLog, error) {
	return nil, db.ErrNotFound
}

func (m *memFuelLogs) FindFuelLogs(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.Cursor, error) {
	return &sliceCursor{items: m.entries}, nil
}

func (m *memFuelLogs) DeleteFuelLog(ctx context.Context, id string) error {
	return nil
}

type memAlerts struct {
	alerts []models.Alert
}

func (m *memAlerts) InsertAlert(ctx context.Context, alert *models.Alert) error {
	alert.ID = primitive.NewObjectID()
	m.alerts = append(m.alerts, *alert)
	return nil
}

func (m *memAlerts) FindAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	return nil, db.ErrNotFound
}

func (m *memAlerts) FindAlerts(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.Cursor, error) {
	return &sliceCursor{items: m.alerts}, nil
}

func (m *memAlerts) ResolveAlert(ctx context.Context, id string) error {
	for i := range m.alerts {
		if m.alerts[i].ID.Hex() == id {
			m.alerts[i].Status = models.AlertStatusResolved
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *memAlerts) DeleteAlert(ctx context.Context, id string) error {
	return nil
}

type memPositions struct {
	latest *models.Position
}

func (m *memPositions) InsertPosition(ctx context.Context, position *models.Position) error {
	return nil
}

func (m *memPositions) FindPositions(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.Cursor, error) {
	list := []models.Position{}
	if m.latest != nil {
		list = append(list, *m.latest)
	}
	return &sliceCursor{items: list}, nil
}

func (m *memPositions) FindLatestPosition(ctx context.Context, vehicleID string) (*models.Position, error) {
	if m.latest == nil {
		return nil, db.ErrNotFound
	}
	return m.latest, nil
}

type countingObserver struct {
	updates int
}

func (c *countingObserver) Update(ctx context.Context, alert *models.Alert) error {
	c.updates++
	return nil
}

func (c *countingObserver) Name() string {
	return "counting"
}

func TestVehicleHandler_Create(t *testing.T) {
	vehicles := newMemVehicles()
	mux := http.NewServeMux()
	NewVehicleHandler(vehicles, command.NewInvoker()).RegisterRoutes(mux)

	payload := `{"vin":"1FTokenVIN","vehicle_number":"B-101","type":"bus","year":2019,"fuel_type":"diesel","consumption_rate":35}`
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Vehicle
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.False(t, created.ID.IsZero(), "response should carry the generated id")
	assert.Equal(t, models.VehicleStatusAvailable, created.Status, "status defaults to available")
}

func TestVehicleHandler_CreateValidation(t *testing.T) {
	mux := http.NewServeMux()
	NewVehicleHandler(newMemVehicles(), command.NewInvoker()).RegisterRoutes(mux)

	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{nope`},
		{"missing vin", `{"type":"bus"}`},
		{"missing type", `{"vin":"X"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBufferString(tt.payload))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestVehicleHandler_GetNotFound(t *testing.T) {
	mux := http.NewServeMux()
	NewVehicleHandler(newMemVehicles(), command.NewInvoker()).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/"+primitive.NewObjectID().Hex(), nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVehicleHandler_UpdateStatusAndRoute(t *testing.T) {
	vehicles := newMemVehicles()
	id := vehicles.add(&models.Vehicle{Type: models.VehicleTypeBus, Status: models.VehicleStatusAvailable})
	mux := http.NewServeMux()
	NewVehicleHandler(vehicles, command.NewInvoker()).RegisterRoutes(mux)

	payload := `{"status":"active","current_route":"R12"}`
	req := httptest.NewRequest(http.MethodPut, "/api/vehicles/"+id, bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	updated, _ := vehicles.FindVehicleByID(context.Background(), id)
	assert.Equal(t, models.VehicleStatusActive, updated.Status)
	assert.Equal(t, "R12", updated.CurrentRoute)
}

func TestUndoHandler_RevertsLastCreate(t *testing.T) {
	vehicles := newMemVehicles()
	invoker := command.NewInvoker()
	mux := http.NewServeMux()
	NewVehicleHandler(vehicles, invoker).RegisterRoutes(mux)
	NewUndoHandler(invoker).RegisterRoutes(mux)

	// Nothing to undo yet.
	req := httptest.NewRequest(http.MethodPost, "/api/undo", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Create a vehicle, then undo it.
	create := httptest.NewRequest(http.MethodPost, "/api/vehicles",
		bytes.NewBufferString(`{"vin":"V","type":"van"}`))
	cw := httptest.NewRecorder()
	mux.ServeHTTP(cw, create)
	assert.Equal(t, http.StatusCreated, cw.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/undo", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, vehicles.deletedIDs, 1, "undo should delete the created vehicle")
	assert.Empty(t, vehicles.byID)
}

func TestMaintenanceHandler_ScheduleComputesNextServiceDate(t *testing.T) {
	vehicles := newMemVehicles()
	id := vehicles.add(&models.Vehicle{Type: models.VehicleTypeBus, Year: 2020, Status: models.VehicleStatusActive})
	records := &memMaintenance{}
	mux := http.NewServeMux()
	NewMaintenanceHandler(records, vehicles, &memAlerts{}, alerts.NewSubject(), command.NewInvoker()).RegisterRoutes(mux)

	payload := `{"vehicle_id":"` + id + `","description":"brake service","cost":450,"strategy":"time_based"}`
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, records.records, 1)

	record := records.records[0]
	assert.Equal(t, models.MaintenanceStatusPending, record.Status)
	// Bus with no history: next service is a 60 day interval from now.
	assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), record.NextServiceDate, time.Minute)
}

func TestMaintenanceHandler_ScheduleUnknownStrategy(t *testing.T) {
	vehicles := newMemVehicles()
	id := vehicles.add(&models.Vehicle{Type: models.VehicleTypeBus})
	mux := http.NewServeMux()
	NewMaintenanceHandler(&memMaintenance{}, vehicles, &memAlerts{}, alerts.NewSubject(), command.NewInvoker()).RegisterRoutes(mux)

	payload := `{"vehicle_id":"` + id + `","strategy":"tarot"}`
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaintenanceHandler_DueCheckRaisesAlert(t *testing.T) {
	vehicles := newMemVehicles()
	id := vehicles.add(&models.Vehicle{Type: models.VehicleTypeBus, Year: 2020, Status: models.VehicleStatusActive})
	// Last service far beyond the 60 day bus interval.
	records := &memMaintenance{records: []models.Maintenance{{
		ID:          primitive.NewObjectID(),
		VehicleID:   id,
		ServiceDate: time.Now().Add(-120 * 24 * time.Hour),
		Status:      models.MaintenanceStatusCompleted,
	}}}
	alertStore := &memAlerts{}
	subject := alerts.NewSubject()
	obs := &countingObserver{}
	subject.AddObserver(obs)

	mux := http.NewServeMux()
	NewMaintenanceHandler(records, vehicles, alertStore, subject, command.NewInvoker()).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/maintenance/due?vehicle_id="+id+"&strategy=time_based", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Due          bool `json:"due"`
		IntervalDays int  `json:"interval_days"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Due)
	assert.Equal(t, 60, resp.IntervalDays)
	assert.Len(t, alertStore.alerts, 1, "due check should persist a maintenance alert")
	assert.Equal(t, models.AlertTypeMaintenance, alertStore.alerts[0].Type)
	assert.Equal(t, 1, obs.updates, "alert should reach the observers")
}

func TestFuelLogHandler_CreateRaisesFuelAlert(t *testing.T) {
	vehicles := newMemVehicles()
	id := vehicles.add(&models.Vehicle{Type: models.VehicleTypeBus, ConsumptionRate: 30})
	logs := &memFuelLogs{}
	alertStore := &memAlerts{}
	subject := alerts.NewSubject()
	obs := &countingObserver{}
	subject.AddObserver(obs)

	mux := http.NewServeMux()
	NewFuelLogHandler(logs, vehicles, alertStore, subject, command.NewInvoker()).RegisterRoutes(mux)

	// 200 L over 400 km is 50 L/100km, well above the rated 30.
	payload := `{"vehicle_id":"` + id + `","fuel_type":"diesel","amount":200,"cost":380,"distance":400,"operator_id":"op-7"}`
	req := httptest.NewRequest(http.MethodPost, "/api/fuellogs", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, logs.entries, 1)
	assert.Len(t, alertStore.alerts, 1)
	assert.Equal(t, models.AlertTypeFuel, alertStore.alerts[0].Type)
	assert.Equal(t, 1, obs.updates)
}

func TestFuelLogHandler_CreateUnknownVehicle(t *testing.T) {
	mux := http.NewServeMux()
	NewFuelLogHandler(&memFuelLogs{}, newMemVehicles(), &memAlerts{}, alerts.NewSubject(), command.NewInvoker()).RegisterRoutes(mux)

	payload := `{"vehicle_id":"` + primitive.NewObjectID().Hex() + `","amount":50}`
	req := httptest.NewRequest(http.MethodPost, "/api/fuellogs", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAlertHandler_RaiseAndResolve(t *testing.T) {
	alertStore := &memAlerts{}
	subject := alerts.NewSubject()
	obs := &countingObserver{}
	subject.AddObserver(obs)

	mux := http.NewServeMux()
	NewAlertHandler(alertStore, subject).RegisterRoutes(mux)

	payload := `{"vehicle_id":"veh-1","type":"gps","message":"left geofence"}`
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, obs.updates)
	assert.Len(t, alertStore.alerts, 1)

	resolve := httptest.NewRequest(http.MethodPost, "/api/alerts/"+alertStore.alerts[0].ID.Hex()+"/resolve", nil)
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, resolve)
	assert.Equal(t, http.StatusNoContent, rw.Code)
	assert.Equal(t, models.AlertStatusResolved, alertStore.alerts[0].Status)
}

func TestAlertHandler_RaiseInvalidType(t *testing.T) {
	mux := http.NewServeMux()
	NewAlertHandler(&memAlerts{}, alerts.NewSubject()).RegisterRoutes(mux)

	payload := `{"vehicle_id":"veh-1","type":"weather","message":"snow"}`
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPositionHandler_Latest(t *testing.T) {
	positions := &memPositions{}
	mux := http.NewServeMux()
	NewPositionHandler(positions).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/positions/latest?vehicle_id=veh-1", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "no fixes yet")

	positions.latest = &models.Position{
		VehicleID: "veh-1",
		Timestamp: time.Now(),
		Location:  models.Location{Lat: 40.7, Lon: -74.0},
		SpeedKmh:  28,
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/positions/latest?vehicle_id=veh-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Position
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "veh-1", got.VehicleID)
}

func TestPositionHandler_HistoryRequiresVehicleID(t *testing.T) {
	mux := http.NewServeMux()
	NewPositionHandler(&memPositions{}).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

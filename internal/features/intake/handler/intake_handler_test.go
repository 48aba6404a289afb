package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	intake "parcel-depot/internal/features/intake/domain"
	"parcel-depot/internal/features/intake/service"
	parcels "parcel-depot/internal/features/parcels/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeParcelRepo is an in-memory ports.ParcelRepository.
type fakeParcelRepo struct {
	parcels map[string]*parcels.Parcel
}

func newFakeParcelRepo(seed ...*parcels.Parcel) *fakeParcelRepo {
	r := &fakeParcelRepo{parcels: map[string]*parcels.Parcel{}}
	for _, p := range seed {
		r.parcels[p.ID] = p
	}
	return r
}

func (r *fakeParcelRepo) Get(_ context.Context, id string) (*parcels.Parcel, error) {
	p, ok := r.parcels[id]
	if !ok {
		return nil, parcels.ErrParcelNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeParcelRepo) GetByTrackingCode(_ context.Context, code string) (*parcels.Parcel, error) {
	for _, p := range r.parcels {
		if p.TrackingCode == code {
			clone := *p
			return &clone, nil
		}
	}
	return nil, parcels.ErrParcelNotFound
}

func (r *fakeParcelRepo) Save(_ context.Context, p *parcels.Parcel) error {
	clone := *p
	r.parcels[p.ID] = &clone
	return nil
}

func (r *fakeParcelRepo) SaveAll(ctx context.Context, batch []*parcels.Parcel) error {
	for _, p := range batch {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeParcelRepo) List(_ context.Context) ([]*parcels.Parcel, error) {
	out := make([]*parcels.Parcel, 0, len(r.parcels))
	for _, p := range r.parcels {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func setupApp(repo *fakeParcelRepo) *fiber.App {
	h := NewIntakeHandler(service.NewResolver(repo))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Post("/logistic/qr-codes/validate", h.ValidateQR)
	app.Post("/logistic/parcels/:id/arrival-scan", h.ArrivalScan)
	return app
}

func seedParcel() *parcels.Parcel {
	now := time.Now().UTC()
	return &parcels.Parcel{
		ID:               "p1",
		TrackingCode:     "NK-2024-001234",
		DeclaredWeightKg: 10,
		Destination:      "Kinshasa",
		Phase:            parcels.PhasePendingReception,
		LastUpdatedAt:    now,
		CreatedAt:        now,
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *ValidateQRResponse {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out ValidateQRResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out
}

func TestIntakeHandler_ValidateQR_Success(t *testing.T) {
	parcel := seedParcel()
	repo := newFakeParcelRepo(parcel)
	app := setupApp(repo)

	qr, err := intake.EncodeQRPayload(parcel)
	require.NoError(t, err)

	out := postJSON(t, app, "/logistic/qr-codes/validate", ValidateQRRequest{QRCode: qr, Operator: "op-1"})
	assert.True(t, out.Valid)
	require.NotNil(t, out.Parcel)
	assert.Equal(t, parcels.PhaseReceived, out.Parcel.Phase)

	// the scan was persisted
	stored, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, parcels.PhaseReceived, stored.Phase)
}

func TestIntakeHandler_ValidateQR_InvalidFormat(t *testing.T) {
	app := setupApp(newFakeParcelRepo())

	out := postJSON(t, app, "/logistic/qr-codes/validate", ValidateQRRequest{QRCode: "not-a-qr"})
	assert.False(t, out.Valid)
	assert.NotEmpty(t, out.Error)
	assert.Nil(t, out.Parcel)
}

func TestIntakeHandler_ValidateQR_Mismatch(t *testing.T) {
	parcel := seedParcel()
	repo := newFakeParcelRepo(parcel)
	app := setupApp(repo)

	qr, err := intake.EncodeQRPayload(&parcels.Parcel{ID: "p1", TrackingCode: "XX-2024-000001"})
	require.NoError(t, err)

	out := postJSON(t, app, "/logistic/qr-codes/validate", ValidateQRRequest{QRCode: qr})
	assert.False(t, out.Valid)
	assert.Contains(t, out.Error, "QR carries")
}

func TestIntakeHandler_ValidateQR_NotFound(t *testing.T) {
	app := setupApp(newFakeParcelRepo())

	qr, err := intake.EncodeQRPayload(&parcels.Parcel{ID: "ghost", TrackingCode: "NK-2024-001234"})
	require.NoError(t, err)

	out := postJSON(t, app, "/logistic/qr-codes/validate", ValidateQRRequest{QRCode: qr})
	assert.False(t, out.Valid)
}

func TestIntakeHandler_ValidateQR_MissingCode(t *testing.T) {
	app := setupApp(newFakeParcelRepo())

	req := httptest.NewRequest("POST", "/logistic/qr-codes/validate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp.Message, "qrCode is required")
	assert.Equal(t, "test-ray-id", errResp.RayID)
}

func TestIntakeHandler_ArrivalScan(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := newFakeParcelRepo(seedParcel())
		app := setupApp(repo)

		raw, _ := json.Marshal(ArrivalScanRequest{Operator: "op-1", Location: "dock-2"})
		req := httptest.NewRequest("POST", "/logistic/parcels/p1/arrival-scan", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out parcels.Parcel
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, parcels.PhaseReceived, out.Phase)
	})

	t.Run("MissingOperator", func(t *testing.T) {
		repo := newFakeParcelRepo(seedParcel())
		app := setupApp(repo)

		raw, _ := json.Marshal(ArrivalScanRequest{})
		req := httptest.NewRequest("POST", "/logistic/parcels/p1/arrival-scan", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		app := setupApp(newFakeParcelRepo())

		raw, _ := json.Marshal(ArrivalScanRequest{Operator: "op-1"})
		req := httptest.NewRequest("POST", "/logistic/parcels/ghost/arrival-scan", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("AlreadyReceived", func(t *testing.T) {
		parcel := seedParcel()
		parcel.Phase = parcels.PhaseWeighed
		repo := newFakeParcelRepo(parcel)
		app := setupApp(repo)

		raw, _ := json.Marshal(ArrivalScanRequest{Operator: "op-1"})
		req := httptest.NewRequest("POST", "/logistic/parcels/p1/arrival-scan", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

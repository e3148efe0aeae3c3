package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/extract"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/handler"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/reconcile"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/service"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/storage"
	"github.com/fleetdocs/fleetdocs-backend/pkg/logger"
	"github.com/fleetdocs/fleetdocs-backend/pkg/testutil"
)

func newTestRouter() chi.Router {
	log := logger.New("test", "test")
	svc := service.NewService(
		extract.New(),
		reconcile.NewEngine(reconcile.DefaultOptions()),
		storage.NewTempStorage(time.Minute),
		nil, nil,
		log,
	)

	r := chi.NewRouter()
	r.Mount("/api/v1/documents", handler.NewHandler(svc, log).Routes())
	return r
}

type jobResponse struct {
	Success bool                 `json:"success"`
	Data    domain.ExtractionJob `json:"data"`
}

type reconcileResponse struct {
	Success bool                   `json:"success"`
	Data    domain.ReconcileResult `json:"data"`
}

func TestExtract_StartsJob(t *testing.T) {
	router := newTestRouter()

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/documents/extract", map[string]string{
		"text":      testutil.RegistrationDocText,
		"file_name": "registration_112.pdf",
	})
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusAccepted)

	var resp jobResponse
	testutil.ParseJSONBody(t, rr, &resp)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Data.JobID)

	// Poll for the job to complete
	var final jobResponse
	testutil.RequireEventually(t, func() bool {
		getReq := testutil.NewHTTPRequest(http.MethodGet, "/api/v1/documents/extract/"+resp.Data.JobID, nil)
		getRR := testutil.ExecuteRequest(router, getReq)
		if getRR.Code != http.StatusOK {
			return false
		}
		testutil.ParseJSONBody(t, getRR, &final)
		return final.Data.Status == domain.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond, "job did not complete")

	require.NotNil(t, final.Data.Vehicle)
	assert.Equal(t, "1HGBH41JXMN109186", final.Data.Vehicle.VIN)
}

func TestExtract_ValidationErrors(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body map[string]string
	}{
		{
			name: "missing text",
			body: map[string]string{"file_name": "scan.pdf"},
		},
		{
			name: "missing file name",
			body: map[string]string{"text": "some document text"},
		},
		{
			name: "bad document type",
			body: map[string]string{
				"text":          "some document text",
				"file_name":     "scan.pdf",
				"document_type": "passport",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/documents/extract", tt.body)
			rr := testutil.ExecuteRequest(router, req)
			testutil.AssertStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestGetResult_NotFound(t *testing.T) {
	router := newTestRouter()

	req := testutil.NewHTTPRequest(http.MethodGet, "/api/v1/documents/extract/no-such-job", nil)
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertBodyContains(t, rr, "NOT_FOUND")
}

func TestReconcile_InlineRecords(t *testing.T) {
	router := newTestRouter()
	f := testutil.NewFixtureFactory()

	body := map[string]interface{}{
		"vehicles": []interface{}{
			f.VehicleRecord(testutil.WithSourceFile("registration_112.pdf")),
			f.VehicleRecord(testutil.WithSourceFile("insurance_112.pdf")),
		},
	}

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/documents/reconcile", body)
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp reconcileResponse
	testutil.ParseJSONBody(t, rr, &resp)
	require.True(t, resp.Success)

	// Fixtures share the default VIN, so they merge into one group
	require.Len(t, resp.Data.Vehicles, 1)
	assert.Equal(t, 2, resp.Data.Vehicles[0].SourceCount)
	assert.Equal(t, 2, resp.Data.Summary.VehiclesIn)
}

func TestReconcile_Empty(t *testing.T) {
	router := newTestRouter()

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/documents/reconcile", map[string]interface{}{})
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestReconcile_UnknownJobID(t *testing.T) {
	router := newTestRouter()

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/documents/reconcile", map[string]interface{}{
		"job_ids": []string{"missing"},
	})
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

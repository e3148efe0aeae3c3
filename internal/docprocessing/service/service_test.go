package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/extract"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/reconcile"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/service"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/storage"
	"github.com/fleetdocs/fleetdocs-backend/pkg/errors"
	"github.com/fleetdocs/fleetdocs-backend/pkg/logger"
	"github.com/fleetdocs/fleetdocs-backend/pkg/testutil"
)

func newTestService() *service.Service {
	return service.NewService(
		extract.New(),
		reconcile.NewEngine(reconcile.DefaultOptions()),
		storage.NewTempStorage(time.Minute),
		nil, nil,
		logger.New("test", "test"),
	)
}

func waitForJob(t *testing.T, svc *service.Service, jobID string) *domain.ExtractionJob {
	t.Helper()
	testutil.RequireEventually(t, func() bool {
		job, err := svc.GetJob(jobID)
		return err == nil && job.Status != domain.StatusProcessing
	}, 2*time.Second, 10*time.Millisecond, "extraction job did not finish")

	job, err := svc.GetJob(jobID)
	require.NoError(t, err)
	return job
}

func TestStartExtraction_Registration(t *testing.T) {
	svc := newTestService()

	job, err := svc.StartExtraction(context.Background(), testutil.RegistrationDocText, "registration_112.pdf", "")
	require.NoError(t, err)
	require.NotEmpty(t, job.JobID)

	done := waitForJob(t, svc, job.JobID)
	require.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.Classification)
	assert.Equal(t, domain.DocumentTypeRegistration, done.Classification.Type)

	require.NotNil(t, done.Vehicle)
	assert.Nil(t, done.Driver)
	assert.Equal(t, "1HGBH41JXMN109186", done.Vehicle.VIN)
	assert.Equal(t, "FREIGHTLINER", done.Vehicle.Make)
	assert.Equal(t, "registration_112.pdf", done.Vehicle.SourceFileName)
}

func TestStartExtraction_CDL(t *testing.T) {
	svc := newTestService()

	job, err := svc.StartExtraction(context.Background(), testutil.CDLDocText, "cdl_john_smith.pdf", "")
	require.NoError(t, err)

	done := waitForJob(t, svc, job.JobID)
	require.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.Driver)
	assert.Nil(t, done.Vehicle)
	assert.Equal(t, "D12345678", done.Driver.CDLNumber)
}

func TestStartExtraction_DeclaredTypeWins(t *testing.T) {
	svc := newTestService()

	// Ambiguous filename, but the caller declared the type
	job, err := svc.StartExtraction(context.Background(), testutil.CDLDocText, "scan_001.pdf", domain.DocumentTypeCDL)
	require.NoError(t, err)

	done := waitForJob(t, svc, job.JobID)
	require.NotNil(t, done.Classification)
	assert.Equal(t, domain.DocumentTypeCDL, done.Classification.Type)
	assert.Equal(t, 1.0, done.Classification.Confidence)
}

func TestStartExtraction_EmptyText(t *testing.T) {
	svc := newTestService()

	_, err := svc.StartExtraction(context.Background(), "   ", "scan.pdf", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestGetJob_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetJob("no-such-job")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestReconcileBatch_FromJobs(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reg, err := svc.StartExtraction(ctx, testutil.RegistrationDocText, "registration_112.pdf", "")
	require.NoError(t, err)
	ins, err := svc.StartExtraction(ctx, testutil.InsuranceDocText, "insurance_112.pdf", "")
	require.NoError(t, err)

	waitForJob(t, svc, reg.JobID)
	waitForJob(t, svc, ins.JobID)

	result, err := svc.ReconcileBatch(ctx, []string{reg.JobID, ins.JobID}, nil, nil)
	require.NoError(t, err)

	// Both documents share a VIN, so they collapse into one vehicle group
	require.Len(t, result.Vehicles, 1)
	assert.Equal(t, "VIN:1HGBH41JXMN109186", result.Vehicles[0].Key)
	assert.Equal(t, 2, result.Vehicles[0].SourceCount)
	assert.Equal(t, 2, result.Summary.VehiclesIn)
	assert.Equal(t, 1, result.Summary.Merged)
}

func TestReconcileBatch_InlineRecords(t *testing.T) {
	svc := newTestService()
	f := testutil.NewFixtureFactory()

	vehicles := []*domain.ExtractedVehicleRecord{
		f.VehicleRecord(),
		f.VehicleRecord(testutil.WithVIN("2FUJA6CK54LM52481")),
	}
	drivers := []*domain.ExtractedDriverRecord{
		f.DriverRecord(),
	}

	result, err := svc.ReconcileBatch(context.Background(), nil, vehicles, drivers)
	require.NoError(t, err)
	assert.Len(t, result.Vehicles, 2)
	assert.Len(t, result.Drivers, 1)
}

func TestReconcileBatch_UnknownJob(t *testing.T) {
	svc := newTestService()

	_, err := svc.ReconcileBatch(context.Background(), []string{"missing"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestReconcileBatch_Empty(t *testing.T) {
	svc := newTestService()

	_, err := svc.ReconcileBatch(context.Background(), nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

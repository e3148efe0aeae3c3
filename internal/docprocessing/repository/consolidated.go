package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/pkg/database"
	"github.com/fleetdocs/fleetdocs-backend/pkg/errors"
)

// vehicleRow maps a consolidated vehicle to its table. The identity key
// (VIN:/PLATE:/PATTERN:/VEHICLE:/FILE: scheme) is the primary key: a
// reconciliation re-run over a superset batch overwrites the same rows.
type vehicleRow struct {
	IdentityKey          string         `db:"identity_key"`
	VIN                  string         `db:"vin"`
	LicensePlate         string         `db:"license_plate"`
	Year                 int            `db:"year"`
	Make                 string         `db:"make"`
	Model                string         `db:"model"`
	TruckNumber          string         `db:"truck_number"`
	DOTNumber            string         `db:"dot_number"`
	RegistrationNumber   string         `db:"registration_number"`
	RegistrationState    string         `db:"registration_state"`
	RegistrationExpiry   string         `db:"registration_expiry"`
	RegisteredOwner      string         `db:"registered_owner"`
	InsuranceCarrier     string         `db:"insurance_carrier"`
	PolicyNumber         string         `db:"policy_number"`
	InsuranceExpiry      string         `db:"insurance_expiry"`
	CoverageAmount       string         `db:"coverage_amount"`
	DocumentType         string         `db:"document_type"`
	ExtractionConfidence float64        `db:"extraction_confidence"`
	SourceFileNames      string         `db:"source_file_names"`
	ProcessingNotes      pq.StringArray `db:"processing_notes"`
	NeedsReview          bool           `db:"needs_review"`
	SourceCount          int            `db:"source_count"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

type driverRow struct {
	IdentityKey              string         `db:"identity_key"`
	FirstName                string         `db:"first_name"`
	LastName                 string         `db:"last_name"`
	DateOfBirth              string         `db:"date_of_birth"`
	EmployeeID               string         `db:"employee_id"`
	CDLNumber                string         `db:"cdl_number"`
	CDLState                 string         `db:"cdl_state"`
	CDLClass                 string         `db:"cdl_class"`
	CDLIssueDate             string         `db:"cdl_issue_date"`
	CDLExpirationDate        string         `db:"cdl_expiration_date"`
	CDLEndorsements          pq.StringArray `db:"cdl_endorsements"`
	CDLRestrictions          pq.StringArray `db:"cdl_restrictions"`
	MedicalCertNumber        string         `db:"medical_cert_number"`
	MedicalIssueDate         string         `db:"medical_issue_date"`
	MedicalExpirationDate    string         `db:"medical_expiration_date"`
	ExaminerName             string         `db:"examiner_name"`
	ExaminerNationalRegistry string         `db:"examiner_national_registry"`
	MedicalRestrictions      pq.StringArray `db:"medical_restrictions"`
	DocumentType             string         `db:"document_type"`
	ExtractionConfidence     float64        `db:"extraction_confidence"`
	SourceFileNames          string         `db:"source_file_names"`
	ProcessingNotes          pq.StringArray `db:"processing_notes"`
	NeedsReview              bool           `db:"needs_review"`
	SourceCount              int            `db:"source_count"`
	UpdatedAt                time.Time      `db:"updated_at"`
}

// ConsolidatedRepository persists reconciliation output
type ConsolidatedRepository struct {
	db *database.DB
}

// NewConsolidatedRepository creates a new consolidated record repository
func NewConsolidatedRepository(db *database.DB) *ConsolidatedRepository {
	return &ConsolidatedRepository{db: db}
}

// SaveBatch upserts all consolidated records of one reconciliation run in a
// single transaction.
func (r *ConsolidatedRepository) SaveBatch(ctx context.Context, result *domain.ReconcileResult) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for i := range result.Vehicles {
			if err := upsertVehicle(ctx, tx, &result.Vehicles[i]); err != nil {
				return err
			}
		}
		for i := range result.Drivers {
			if err := upsertDriver(ctx, tx, &result.Drivers[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertVehicle(ctx context.Context, tx *sqlx.Tx, v *domain.ConsolidatedVehicle) error {
	query := `
		INSERT INTO consolidated_vehicles (
			identity_key, vin, license_plate, year, make, model, truck_number,
			dot_number, registration_number, registration_state, registration_expiry,
			registered_owner, insurance_carrier, policy_number, insurance_expiry,
			coverage_amount, document_type, extraction_confidence, source_file_names,
			processing_notes, needs_review, source_count, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, NOW()
		)
		ON CONFLICT (identity_key) DO UPDATE SET
			vin = EXCLUDED.vin,
			license_plate = EXCLUDED.license_plate,
			year = EXCLUDED.year,
			make = EXCLUDED.make,
			model = EXCLUDED.model,
			truck_number = EXCLUDED.truck_number,
			dot_number = EXCLUDED.dot_number,
			registration_number = EXCLUDED.registration_number,
			registration_state = EXCLUDED.registration_state,
			registration_expiry = EXCLUDED.registration_expiry,
			registered_owner = EXCLUDED.registered_owner,
			insurance_carrier = EXCLUDED.insurance_carrier,
			policy_number = EXCLUDED.policy_number,
			insurance_expiry = EXCLUDED.insurance_expiry,
			coverage_amount = EXCLUDED.coverage_amount,
			document_type = EXCLUDED.document_type,
			extraction_confidence = EXCLUDED.extraction_confidence,
			source_file_names = EXCLUDED.source_file_names,
			processing_notes = EXCLUDED.processing_notes,
			needs_review = EXCLUDED.needs_review,
			source_count = EXCLUDED.source_count,
			updated_at = NOW()
	`

	_, err := tx.ExecContext(ctx, query,
		v.Key, v.VIN, v.LicensePlate, v.Year, v.Make, v.Model, v.TruckNumber,
		v.DOTNumber, v.RegistrationNumber, v.RegistrationState, v.RegistrationExpiry,
		v.RegisteredOwner, v.InsuranceCarrier, v.PolicyNumber, v.InsuranceExpiry,
		v.CoverageAmount, string(v.DocumentType), v.ExtractionConfidence, v.SourceFileName,
		pq.Array(v.ProcessingNotes), v.NeedsReview, v.SourceCount,
	)
	return err
}

func upsertDriver(ctx context.Context, tx *sqlx.Tx, d *domain.ConsolidatedDriver) error {
	query := `
		INSERT INTO consolidated_drivers (
			identity_key, first_name, last_name, date_of_birth, employee_id,
			cdl_number, cdl_state, cdl_class, cdl_issue_date, cdl_expiration_date,
			cdl_endorsements, cdl_restrictions, medical_cert_number,
			medical_issue_date, medical_expiration_date, examiner_name,
			examiner_national_registry, medical_restrictions, document_type,
			extraction_confidence, source_file_names, processing_notes,
			needs_review, source_count, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, NOW()
		)
		ON CONFLICT (identity_key) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			date_of_birth = EXCLUDED.date_of_birth,
			employee_id = EXCLUDED.employee_id,
			cdl_number = EXCLUDED.cdl_number,
			cdl_state = EXCLUDED.cdl_state,
			cdl_class = EXCLUDED.cdl_class,
			cdl_issue_date = EXCLUDED.cdl_issue_date,
			cdl_expiration_date = EXCLUDED.cdl_expiration_date,
			cdl_endorsements = EXCLUDED.cdl_endorsements,
			cdl_restrictions = EXCLUDED.cdl_restrictions,
			medical_cert_number = EXCLUDED.medical_cert_number,
			medical_issue_date = EXCLUDED.medical_issue_date,
			medical_expiration_date = EXCLUDED.medical_expiration_date,
			examiner_name = EXCLUDED.examiner_name,
			examiner_national_registry = EXCLUDED.examiner_national_registry,
			medical_restrictions = EXCLUDED.medical_restrictions,
			document_type = EXCLUDED.document_type,
			extraction_confidence = EXCLUDED.extraction_confidence,
			source_file_names = EXCLUDED.source_file_names,
			processing_notes = EXCLUDED.processing_notes,
			needs_review = EXCLUDED.needs_review,
			source_count = EXCLUDED.source_count,
			updated_at = NOW()
	`

	_, err := tx.ExecContext(ctx, query,
		d.Key, d.FirstName, d.LastName, d.DateOfBirth, d.EmployeeID,
		d.CDLNumber, d.CDLState, d.CDLClass, d.CDLIssueDate, d.CDLExpirationDate,
		pq.Array(d.CDLEndorsements), pq.Array(d.CDLRestrictions), d.MedicalCertNumber,
		d.MedicalIssueDate, d.MedicalExpirationDate, d.ExaminerName,
		d.ExaminerNationalRegistry, pq.Array(d.MedicalRestrictions), string(d.DocumentType),
		d.ExtractionConfidence, d.SourceFileName, pq.Array(d.ProcessingNotes),
		d.NeedsReview, d.SourceCount,
	)
	return err
}

// GetVehicleByKey fetches one consolidated vehicle by identity key
func (r *ConsolidatedRepository) GetVehicleByKey(ctx context.Context, key string) (*domain.ConsolidatedVehicle, error) {
	var row vehicleRow
	query := `
		SELECT identity_key, vin, license_plate, year, make, model, truck_number,
		       dot_number, registration_number, registration_state, registration_expiry,
		       registered_owner, insurance_carrier, policy_number, insurance_expiry,
		       coverage_amount, document_type, extraction_confidence, source_file_names,
		       processing_notes, needs_review, source_count, updated_at
		FROM consolidated_vehicles
		WHERE identity_key = $1
	`

	err := r.db.GetContext(ctx, &row, query, key)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("vehicle")
	}
	if err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

// ListVehiclesNeedingReview lists consolidated vehicles flagged for manual
// review, most recently updated first.
func (r *ConsolidatedRepository) ListVehiclesNeedingReview(ctx context.Context, limit, offset int) ([]*domain.ConsolidatedVehicle, error) {
	var rows []vehicleRow
	query := `
		SELECT identity_key, vin, license_plate, year, make, model, truck_number,
		       dot_number, registration_number, registration_state, registration_expiry,
		       registered_owner, insurance_carrier, policy_number, insurance_expiry,
		       coverage_amount, document_type, extraction_confidence, source_file_names,
		       processing_notes, needs_review, source_count, updated_at
		FROM consolidated_vehicles
		WHERE needs_review = TRUE
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`

	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}

	out := make([]*domain.ConsolidatedVehicle, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (row *vehicleRow) toDomain() *domain.ConsolidatedVehicle {
	return &domain.ConsolidatedVehicle{
		Key: row.IdentityKey,
		ExtractedVehicleRecord: domain.ExtractedVehicleRecord{
			VIN:                  row.VIN,
			LicensePlate:         row.LicensePlate,
			Year:                 row.Year,
			Make:                 row.Make,
			Model:                row.Model,
			TruckNumber:          row.TruckNumber,
			DOTNumber:            row.DOTNumber,
			RegistrationNumber:   row.RegistrationNumber,
			RegistrationState:    row.RegistrationState,
			RegistrationExpiry:   row.RegistrationExpiry,
			RegisteredOwner:      row.RegisteredOwner,
			InsuranceCarrier:     row.InsuranceCarrier,
			PolicyNumber:         row.PolicyNumber,
			InsuranceExpiry:      row.InsuranceExpiry,
			CoverageAmount:       row.CoverageAmount,
			DocumentType:         domain.DocumentType(row.DocumentType),
			ExtractionConfidence: row.ExtractionConfidence,
			SourceFileName:       row.SourceFileNames,
			ProcessingNotes:      row.ProcessingNotes,
			NeedsReview:          row.NeedsReview,
		},
		SourceCount: row.SourceCount,
	}
}

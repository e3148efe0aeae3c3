package testutil

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// VehicleRecord creates an extracted vehicle record fixture with defaults
func (f *FixtureFactory) VehicleRecord(opts ...func(*domain.ExtractedVehicleRecord)) *domain.ExtractedVehicleRecord {
	seq := f.nextSeq()

	rec := &domain.ExtractedVehicleRecord{
		VIN:                  "1HGBH41JXMN109186",
		LicensePlate:         fmt.Sprintf("TRK%04d", seq),
		Year:                 2020,
		Make:                 "FREIGHTLINER",
		Model:                "CASCADIA",
		TruckNumber:          fmt.Sprintf("%d", 100+seq),
		RegistrationState:    "TX",
		RegistrationExpiry:   "12/31/2027",
		DocumentType:         domain.DocumentTypeRegistration,
		ExtractionConfidence: 0.9,
		SourceFileName:       fmt.Sprintf("registration_%d.pdf", seq),
	}

	for _, opt := range opts {
		opt(rec)
	}

	return rec
}

// WithVIN sets the vehicle record VIN
func WithVIN(vin string) func(*domain.ExtractedVehicleRecord) {
	return func(r *domain.ExtractedVehicleRecord) {
		r.VIN = vin
	}
}

// WithSourceFile sets the vehicle record source file name
func WithSourceFile(name string) func(*domain.ExtractedVehicleRecord) {
	return func(r *domain.ExtractedVehicleRecord) {
		r.SourceFileName = name
	}
}

// DriverRecord creates an extracted driver record fixture with defaults
func (f *FixtureFactory) DriverRecord(opts ...func(*domain.ExtractedDriverRecord)) *domain.ExtractedDriverRecord {
	seq := f.nextSeq()

	rec := &domain.ExtractedDriverRecord{
		FirstName:            "JOHN",
		LastName:             fmt.Sprintf("SMITH%d", seq),
		CDLNumber:            fmt.Sprintf("D%08d", seq),
		CDLState:             "CA",
		CDLClass:             "A",
		CDLExpirationDate:    "2028-06-30",
		DocumentType:         domain.DocumentTypeCDL,
		ExtractionConfidence: 0.85,
		SourceFileName:       fmt.Sprintf("cdl_%d.pdf", seq),
	}

	for _, opt := range opts {
		opt(rec)
	}

	return rec
}

// NewID returns a fresh UUID string for tests
func NewID() string {
	return uuid.New().String()
}

// Sample OCR document texts covering the supported document types. These
// mirror the layout of scanned fleet compliance paperwork.

const RegistrationDocText = `STATE OF TEXAS
VEHICLE REGISTRATION CERTIFICATE
VIN: 1HGBH41JXMN109186
YEAR: 2020  MAKE: FREIGHTLINER  MODEL: CASCADIA
LICENSE PLATE: TRK-4412
REGISTRATION NO: 8841293
REGISTERED OWNER: LONE STAR HAULING LLC
EXPIRES: 03/15/2027
`

const InsuranceDocText = `CERTIFICATE OF LIABILITY INSURANCE
CARRIER: GREAT PLAINS MUTUAL
POLICY NUMBER: TRK-00449
INSURED VEHICLE VIN: 1HGBH41JXMN109186
COVERAGE: $1,000,000
EXPIRATION DATE: 06/30/2027
`

const CDLDocText = `COMMERCIAL DRIVER LICENSE
CA STATE DEPARTMENT OF MOTOR VEHICLES
NAME: JOHN A SMITH
DL NO: D12345678
CLASS A
ISS: 01/15/2022  EXP: 01/15/2027
ENDORSEMENTS: H N
RESTRICTIONS: NONE
`

const MedicalCertDocText = `DOT MEDICAL EXAMINER'S CERTIFICATE
DRIVER NAME: MARIA GARCIA
DATE OF BIRTH: MARCH 22, 1985
CERT NO: MC-2024-0117
EXAM DATE: 04/10/2026
EXPIRATION DATE: 04/10/2028
MEDICAL EXAMINER: Dr. Alan Reed
NATIONAL REGISTRY: 1234567890
RESTRICTIONS: CORRECTIVE LENSES
`

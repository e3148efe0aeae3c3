package domain

import "time"

// DocumentType represents the type of compliance document being processed
type DocumentType string

const (
	DocumentTypeRegistration DocumentType = "registration"
	DocumentTypeInsurance    DocumentType = "insurance"
	DocumentTypeMedicalCert  DocumentType = "medical_certificate"
	DocumentTypeCDL          DocumentType = "cdl"
	DocumentTypeUnknown      DocumentType = "unknown"
)

// IsVehicleType reports whether the document describes a vehicle rather than a driver.
func (t DocumentType) IsVehicleType() bool {
	return t == DocumentTypeRegistration || t == DocumentTypeInsurance
}

// IsDriverType reports whether the document describes a driver.
func (t DocumentType) IsDriverType() bool {
	return t == DocumentTypeMedicalCert || t == DocumentTypeCDL
}

// Classification is the result of classifying a document by filename/content.
type Classification struct {
	Type       DocumentType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// ExtractedVehicleRecord holds the structured fields extracted from a single
// vehicle document (registration or insurance certificate). Fields left empty
// simply were not found in the text; that is not an error.
type ExtractedVehicleRecord struct {
	VIN                string `json:"vin,omitempty"`
	LicensePlate       string `json:"license_plate,omitempty"`
	Year               int    `json:"year,omitempty"`
	Make               string `json:"make,omitempty"`
	Model              string `json:"model,omitempty"`
	TruckNumber        string `json:"truck_number,omitempty"`
	DOTNumber          string `json:"dot_number,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	RegistrationState  string `json:"registration_state,omitempty"`
	RegistrationExpiry string `json:"registration_expiry,omitempty"`
	RegisteredOwner    string `json:"registered_owner,omitempty"`
	InsuranceCarrier   string `json:"insurance_carrier,omitempty"`
	PolicyNumber       string `json:"policy_number,omitempty"`
	InsuranceExpiry    string `json:"insurance_expiry,omitempty"`
	CoverageAmount     string `json:"coverage_amount,omitempty"`

	// DocumentType is one of registration/insurance for per-document records.
	// Consolidated records may carry a combined value such as
	// "insurance+registration".
	DocumentType         DocumentType `json:"document_type"`
	ExtractionConfidence float64      `json:"extraction_confidence"`
	SourceFileName       string       `json:"source_file_name"`
	ProcessingNotes      []string     `json:"processing_notes"`
	NeedsReview          bool         `json:"needs_review"`
}

// ExtractedDriverRecord holds the structured fields extracted from a single
// driver document (CDL or DOT medical certificate).
type ExtractedDriverRecord struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	EmployeeID  string `json:"employee_id,omitempty"`

	CDLNumber         string   `json:"cdl_number,omitempty"`
	CDLState          string   `json:"cdl_state,omitempty"`
	CDLClass          string   `json:"cdl_class,omitempty"`
	CDLIssueDate      string   `json:"cdl_issue_date,omitempty"`
	CDLExpirationDate string   `json:"cdl_expiration_date,omitempty"`
	CDLEndorsements   []string `json:"cdl_endorsements,omitempty"`
	CDLRestrictions   []string `json:"cdl_restrictions,omitempty"`

	MedicalCertNumber        string   `json:"medical_cert_number,omitempty"`
	MedicalIssueDate         string   `json:"medical_issue_date,omitempty"`
	MedicalExpirationDate    string   `json:"medical_expiration_date,omitempty"`
	ExaminerName             string   `json:"examiner_name,omitempty"`
	ExaminerNationalRegistry string   `json:"examiner_national_registry,omitempty"`
	MedicalRestrictions      []string `json:"medical_restrictions,omitempty"`

	DocumentType         DocumentType `json:"document_type"`
	ExtractionConfidence float64      `json:"extraction_confidence"`
	SourceFileName       string       `json:"source_file_name"`
	ProcessingNotes      []string     `json:"processing_notes"`
	NeedsReview          bool         `json:"needs_review"`
}

// ConsolidatedVehicle is one physical vehicle after reconciliation. The
// embedded record carries the merged attributes; SourceFileName is a
// comma-joined trail of every contributing file and DocumentType may be a
// combined value ("insurance+registration").
type ConsolidatedVehicle struct {
	// Key is the identity key the vehicle was grouped under
	// (VIN: > PLATE: > PATTERN: > VEHICLE: > FILE:).
	Key string `json:"identity_key"`

	ExtractedVehicleRecord

	// SourceCount is the number of per-document records merged into this group.
	SourceCount int `json:"source_count"`
}

// ConsolidatedDriver is one driver after the deduplication pass. Driver-side
// reconciliation removes duplicates but does not merge fields across records.
type ConsolidatedDriver struct {
	Key string `json:"identity_key"`

	ExtractedDriverRecord

	SourceCount int `json:"source_count"`
}

// ReconcileSummary reports what the reconciliation engine did with a batch.
// NewGroups and Merged are the observable outcomes of the grouping pass;
// duplicate counts come from the dedup pass that follows it.
type ReconcileSummary struct {
	VehiclesIn               int `json:"vehicles_in"`
	DriversIn                int `json:"drivers_in"`
	NewGroups                int `json:"new_groups"`
	Merged                   int `json:"merged"`
	VehicleDuplicatesRemoved int `json:"vehicle_duplicates_removed"`
	DriverDuplicatesRemoved  int `json:"driver_duplicates_removed"`
}

// ExtractionStatus represents the processing state of an extraction job
type ExtractionStatus string

const (
	StatusPending    ExtractionStatus = "pending"
	StatusProcessing ExtractionStatus = "processing"
	StatusCompleted  ExtractionStatus = "completed"
	StatusFailed     ExtractionStatus = "failed"
)

// ExtractionJob represents a single-document extraction job. Exactly one of
// Vehicle/Driver is set on completion, depending on the classified type.
type ExtractionJob struct {
	JobID          string                  `json:"job_id"`
	Status         ExtractionStatus        `json:"status"`
	Classification *Classification         `json:"classification,omitempty"`
	Vehicle        *ExtractedVehicleRecord `json:"vehicle,omitempty"`
	Driver         *ExtractedDriverRecord  `json:"driver,omitempty"`
	Error          string                  `json:"error,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ReconcileResult is the full output of a batch reconciliation run.
type ReconcileResult struct {
	Vehicles []ConsolidatedVehicle `json:"vehicles"`
	Drivers  []ConsolidatedDriver  `json:"drivers"`
	Summary  ReconcileSummary      `json:"summary"`
}

package validation_test

import (
	"testing"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/validation"
	"github.com/stretchr/testify/assert"
)

func TestValidateVehicle_CleanRecord(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateVehicle(&domain.ExtractedVehicleRecord{
		VIN:                "1HGBH41JXMN109186",
		LicensePlate:       "ABC1234",
		Year:               2021,
		RegistrationState:  "TX",
		RegistrationExpiry: "03/15/2031",
		DocumentType:       domain.DocumentTypeRegistration,
	})

	assert.False(t, res.Failed())
	assert.Empty(t, res.Errors)
}

func TestValidateVehicle_BadVIN(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateVehicle(&domain.ExtractedVehicleRecord{
		VIN: "SHORT123",
	})

	assert.True(t, res.Failed())
	assert.Equal(t, "vin", res.Errors[0].Field)
}

func TestValidateVehicle_EmptyFieldsAreNotFindings(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateVehicle(&domain.ExtractedVehicleRecord{})

	assert.False(t, res.Failed())
	assert.Empty(t, res.Warnings)
}

func TestValidateVehicle_ImplausibleYearIsWarning(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateVehicle(&domain.ExtractedVehicleRecord{Year: 1972})

	assert.False(t, res.Failed())
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, "year", res.Warnings[0].Field)
}

func TestValidateVehicle_ExpiredDocumentIsWarning(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateVehicle(&domain.ExtractedVehicleRecord{
		InsuranceExpiry: "01/15/2019",
	})

	assert.False(t, res.Failed())
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, "insurance_expiry", res.Warnings[0].Field)
}

func TestValidateVehicle_GarbledDateIsWarning(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateVehicle(&domain.ExtractedVehicleRecord{
		RegistrationExpiry: "O3/XX/2O25",
	})

	assert.False(t, res.Failed())
	assert.Len(t, res.Warnings, 1)
}

func TestValidateDriver_CleanCDL(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateDriver(&domain.ExtractedDriverRecord{
		FirstName:         "John",
		LastName:          "Smith",
		CDLNumber:         "D12345678",
		CDLState:          "CA",
		CDLClass:          "A",
		CDLExpirationDate: "2031-06-30",
		DateOfBirth:       "1985-02-11",
		DocumentType:      domain.DocumentTypeCDL,
	})

	assert.False(t, res.Failed())
}

func TestValidateDriver_ShortCDLNumber(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateDriver(&domain.ExtractedDriverRecord{CDLNumber: "D1234"})

	assert.True(t, res.Failed())
	assert.Equal(t, "cdl_number", res.Errors[0].Field)
}

func TestValidateDriver_NonStandardDateIsError(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateDriver(&domain.ExtractedDriverRecord{MedicalExpirationDate: "06/30/2026"})

	assert.True(t, res.Failed())
	assert.Equal(t, "medical_expiration_date", res.Errors[0].Field)
}

func TestValidateDriver_ExpirationBeforeIssue(t *testing.T) {
	v := validation.NewValidator()

	res := v.ValidateDriver(&domain.ExtractedDriverRecord{
		MedicalIssueDate:      "2030-06-01",
		MedicalExpirationDate: "2029-06-01",
	})

	assert.True(t, res.Failed())
}

package classifier_test

import (
	"testing"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/classifier"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

func TestClassify_Filename(t *testing.T) {
	tests := []struct {
		filename string
		want     domain.DocumentType
		wantConf float64
	}{
		{"dot_medical_card_smith.pdf", domain.DocumentTypeMedicalCert, 0.9},
		{"med_cert_2024.jpg", domain.DocumentTypeMedicalCert, 0.9},
		{"cdl_jones.pdf", domain.DocumentTypeCDL, 0.9},
		{"driver_license_scan.png", domain.DocumentTypeCDL, 0.9},
		{"registration_truck12.pdf", domain.DocumentTypeRegistration, 0.8},
		{"dmv_title.pdf", domain.DocumentTypeRegistration, 0.8},
		{"insurance_policy_2025.pdf", domain.DocumentTypeInsurance, 0.8},
		{"coverage_cert.pdf", domain.DocumentTypeInsurance, 0.8},
		{"IMG_20240115.jpg", domain.DocumentTypeUnknown, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := classifier.Classify(tt.filename, "")
			if got.Type != tt.want {
				t.Errorf("Classify(%q).Type = %v, want %v", tt.filename, got.Type, tt.want)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Classify(%q).Confidence = %v, want %v", tt.filename, got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestClassify_FamilyPriority(t *testing.T) {
	// "med_cert" must win over the insurance family's "certificate",
	// and "cdl" over registration's "reg".
	got := classifier.Classify("med_certificate.pdf", "")
	if got.Type != domain.DocumentTypeMedicalCert {
		t.Errorf("med_certificate.pdf classified as %v, want medical_certificate", got.Type)
	}

	got = classifier.Classify("cdl_registration_copy.pdf", "")
	if got.Type != domain.DocumentTypeCDL {
		t.Errorf("cdl_registration_copy.pdf classified as %v, want cdl", got.Type)
	}
}

func TestClassify_ContentOverride(t *testing.T) {
	// Dense insurance vocabulary should override a weak unknown filename.
	preview := "CERTIFICATE OF INSURANCE\nPOLICY NUMBER: TRK-449\nCOVERAGE: $1,000,000 LIABILITY\nINSURED: MTS TRUCKING\nCARRIER: PROGRESSIVE COMMERCIAL\nPREMIUM DUE\nDEDUCTIBLE $1000"

	got := classifier.Classify("scan001.pdf", preview)
	if got.Type != domain.DocumentTypeInsurance {
		t.Errorf("content classification = %v, want insurance", got.Type)
	}
	if got.Confidence <= 0.5 {
		t.Errorf("content confidence = %v, want > 0.5", got.Confidence)
	}
}

func TestClassify_ContentDoesNotOverrideStrongFilename(t *testing.T) {
	// A 0.9 filename match outranks any content score below it.
	preview := "insurance policy coverage"

	got := classifier.Classify("dot_medical_card.pdf", preview)
	if got.Type != domain.DocumentTypeMedicalCert {
		t.Errorf("got %v, want medical_certificate from filename", got.Type)
	}
}

func TestClassify_WeakContentFallsBackToUnknown(t *testing.T) {
	// One indicator out of nine is below the 0.3 threshold.
	got := classifier.Classify("upload.bin", "the vehicle was parked")
	if got.Type != domain.DocumentTypeUnknown {
		t.Errorf("got %v, want unknown for sparse content", got.Type)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want default 0.5", got.Confidence)
	}
}

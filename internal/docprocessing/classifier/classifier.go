package classifier

import (
	"strings"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

// filenameFamily is one keyword family checked against the filename.
// Families are evaluated in priority order; the first match wins.
type filenameFamily struct {
	docType    domain.DocumentType
	confidence float64
	keywords   []string
}

// Family order matters: "med_cert" must beat the insurance family's
// "certificate", and "cdl" must beat registration's "reg".
var filenameFamilies = []filenameFamily{
	{domain.DocumentTypeMedicalCert, 0.9, []string{
		"medical", "dot_medical", "physical", "med_cert", "medical_certificate", "med_card", "dot_card",
	}},
	{domain.DocumentTypeCDL, 0.9, []string{
		"cdl", "license", "driver_license", "commercial_license",
	}},
	{domain.DocumentTypeRegistration, 0.8, []string{
		"registration", "reg", "title", "dmv",
	}},
	{domain.DocumentTypeInsurance, 0.8, []string{
		"insurance", "policy", "coverage", "certificate",
	}},
}

// Content indicator word lists. The content score for a type is the fraction
// of its indicators present in the preview text.
var contentIndicators = map[domain.DocumentType][]string{
	domain.DocumentTypeRegistration: {
		"registration", "registered owner", "vin", "license plate",
		"vehicle", "dmv", "title number", "registrant", "odometer",
	},
	domain.DocumentTypeInsurance: {
		"insurance", "policy", "coverage", "liability",
		"insured", "carrier", "premium", "deductible", "certificate of insurance",
	},
}

const (
	defaultConfidence = 0.5
	minContentScore   = 0.3
)

// Classify assigns a document type from the filename and an optional text
// preview (roughly the first 1000 characters of OCR output, or a synthetic
// marker for image uploads). A classification is always produced; when
// nothing matches the result is unknown with the default confidence.
func Classify(filename, preview string) domain.Classification {
	result := classifyFilename(filename)

	if preview != "" {
		content := classifyContent(preview)
		if content.Type != domain.DocumentTypeUnknown && content.Confidence > result.Confidence {
			return content
		}
	}

	return result
}

func classifyFilename(filename string) domain.Classification {
	name := strings.ToLower(filename)

	for _, family := range filenameFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(name, kw) {
				return domain.Classification{Type: family.docType, Confidence: family.confidence}
			}
		}
	}

	return domain.Classification{Type: domain.DocumentTypeUnknown, Confidence: defaultConfidence}
}

// classifyContent scores the preview against the registration and insurance
// indicator lists. Ties and sub-threshold scores yield unknown.
func classifyContent(preview string) domain.Classification {
	text := strings.ToLower(preview)

	best := domain.Classification{Type: domain.DocumentTypeUnknown, Confidence: 0}
	tied := false

	for docType, indicators := range contentIndicators {
		matched := 0
		for _, ind := range indicators {
			if strings.Contains(text, ind) {
				matched++
			}
		}
		score := float64(matched) / float64(len(indicators))
		switch {
		case score > best.Confidence:
			best = domain.Classification{Type: docType, Confidence: score}
			tied = false
		case score == best.Confidence && score > 0:
			tied = true
		}
	}

	if tied || best.Confidence < minContentScore {
		return domain.Classification{Type: domain.DocumentTypeUnknown, Confidence: 0}
	}

	return best
}

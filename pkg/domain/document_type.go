package domain

import dErrors "vault/pkg/domain-errors"

// DocumentType identifies the kind of official record being issued or applied
// for. Invariant: the value must be one of the supported types.
type DocumentType string

const (
	DocumentTypeBirthCertificate    DocumentType = "birth_certificate"
	DocumentTypeNationalID          DocumentType = "national_id"
	DocumentTypePassport            DocumentType = "passport"
	DocumentTypeDriversLicense      DocumentType = "drivers_license"
	DocumentTypeDegree              DocumentType = "degree"
	DocumentTypeTranscript          DocumentType = "transcript"
	DocumentTypePropertyDeed        DocumentType = "property_deed"
	DocumentTypeLandTitle           DocumentType = "land_title"
	DocumentTypeMarriageCertificate DocumentType = "marriage_certificate"
	DocumentTypeTaxClearance        DocumentType = "tax_clearance"
	DocumentTypeBusinessLicense     DocumentType = "business_license"
)

// validDocumentTypes is the single source of truth for supported types.
var validDocumentTypes = map[DocumentType]bool{
	DocumentTypeBirthCertificate:    true,
	DocumentTypeNationalID:          true,
	DocumentTypePassport:            true,
	DocumentTypeDriversLicense:      true,
	DocumentTypeDegree:              true,
	DocumentTypeTranscript:          true,
	DocumentTypePropertyDeed:        true,
	DocumentTypeLandTitle:           true,
	DocumentTypeMarriageCertificate: true,
	DocumentTypeTaxClearance:        true,
	DocumentTypeBusinessLicense:     true,
}

// ParseDocumentType constructs a DocumentType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseDocumentType(s string) (DocumentType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document type cannot be empty")
	}
	t := DocumentType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid document type: "+s)
	}
	return t, nil
}

// IsValid checks if the type is one of the supported enum values.
func (t DocumentType) IsValid() bool { return validDocumentTypes[t] }

func (t DocumentType) String() string { return string(t) }

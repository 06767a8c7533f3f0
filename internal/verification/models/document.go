package models

import (
	"time"

	id "agrilink/pkg/domain"
)

// DocumentKind names a verification artifact slot. A subject holds at most
// one live document per kind.
type DocumentKind string

const (
	KindIdentityProof     DocumentKind = "identity_proof"
	KindBusinessLicense   DocumentKind = "business_license"
	KindFarmCertification DocumentKind = "farm_certification"
)

// Known reports whether k is a recognised document kind.
func (k DocumentKind) Known() bool {
	switch k {
	case KindIdentityProof, KindBusinessLicense, KindFarmCertification:
		return true
	}
	return false
}

// DocumentStatus tracks a single document through review. Absence of a
// record represents the "absent" state, so a stored document is never
// created directly as verified: it enters as uploaded and follows its
// subject's review outcome.
type DocumentStatus string

const (
	DocumentUploaded    DocumentStatus = "uploaded"
	DocumentUnderReview DocumentStatus = "under_review"
	DocumentVerified    DocumentStatus = "verified"
	DocumentRejected    DocumentStatus = "rejected"
)

// Document is one uploaded verification artifact. Content lives in the blob
// store; ContentRef is the opaque handle.
type Document struct {
	SubjectID   id.SubjectID   `json:"subject_id"`
	Kind        DocumentKind   `json:"kind"`
	Status      DocumentStatus `json:"status"`
	FileName    string         `json:"file_name"`
	ByteSize    int64          `json:"byte_size"`
	ContentType string         `json:"content_type"`
	ContentRef  string         `json:"content_ref"`
	UploadedAt  time.Time      `json:"uploaded_at"`
}

package domain

import (
	"sort"
	"strings"
	"time"
)

// DocumentType classifies the evidentiary files an applicant uploads.
type DocumentType string

const (
	DocumentTypeID               DocumentType = "id"
	DocumentTypeProofOfResidence DocumentType = "proof_of_residence"
	DocumentTypeBankStatement    DocumentType = "bank_statement"
	DocumentTypePayslip          DocumentType = "payslip"
	DocumentTypeOther            DocumentType = "other"
)

// VerificationStatus is the closed set of document review states.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Document is an evidentiary file reference belonging to one user. Several
// documents of the same type may coexist; the current one is resolved by
// the most recent upload date.
type Document struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"userId"`
	Type               DocumentType       `json:"type"`
	Name               string             `json:"name"`
	FilePath           string             `json:"filePath"`
	DateUploaded       time.Time          `json:"dateUploaded"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	VerificationNotes  string             `json:"verificationNotes,omitempty"`
}

var placeholderAssets = map[DocumentType]string{
	DocumentTypeID:               "/placeholders/id.png",
	DocumentTypeProofOfResidence: "/placeholders/proof_of_residence.png",
	DocumentTypeBankStatement:    "/placeholders/bank_statement.png",
	DocumentTypePayslip:          "/placeholders/payslip.png",
}

const placeholderDefault = "/placeholders/document.png"

// ViewURL resolves the document to a viewable URL. Absolute URLs and
// already-rooted paths pass through unchanged, other paths gain a leading
// slash, and an absent file path falls back to a type-keyed placeholder.
func (d *Document) ViewURL() string {
	switch {
	case d.FilePath == "":
		if asset, ok := placeholderAssets[d.Type]; ok {
			return asset
		}
		return placeholderDefault
	case strings.HasPrefix(d.FilePath, "http://"), strings.HasPrefix(d.FilePath, "https://"):
		return d.FilePath
	case strings.HasPrefix(d.FilePath, "/"):
		return d.FilePath
	default:
		return "/" + d.FilePath
	}
}

// CurrentDocument picks the most recently uploaded document of the given
// type, or nil when none exists. Its verification status is the "current"
// status for that type.
func CurrentDocument(docs []Document, t DocumentType) *Document {
	var current *Document
	for i := range docs {
		if docs[i].Type != t {
			continue
		}
		if current == nil || docs[i].DateUploaded.After(current.DateUploaded) {
			current = &docs[i]
		}
	}
	return current
}

// SortByUploadDesc orders documents most-recent-first in place.
func SortByUploadDesc(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].DateUploaded.After(docs[j].DateUploaded)
	})
}

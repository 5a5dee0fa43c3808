package common

// Response of a document digest.
type DigestRes struct {
	Digest string `json:"digest" validate:"required"` // Hex encoded SHA-256 hash of the canonical document.
}

// Response of a document listing.
type ListDocumentsRes struct {
	Count int      `json:"count" validate:"gte=0"`   // Number of stored documents.
	Names []string `json:"names" validate:"required"` // Names of the stored documents in lexical order.
}

// Response of a saved document.
type SaveDocumentRes struct {
	Name   string `json:"name" validate:"required"`   // Name of the document.
	Digest string `json:"digest" validate:"required"` // Digest of the saved document.
}

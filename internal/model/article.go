package model

import (
	"io"
	"time"
)

// MediaType is the declared content type of an attachment upload.
type MediaType string

// Allowed attachment media types. Anything else is rejected before a single
// byte reaches the content area.
const (
	MediaJPEG MediaType = "image/jpeg"
	MediaPNG  MediaType = "image/png"
	MediaPDF  MediaType = "application/pdf"
)

// MaxAttachmentSize is the upper bound for a single attachment upload (5 MiB).
const MaxAttachmentSize int64 = 5 << 20

// Allowed reports whether t is one of the accepted attachment media types.
func (t MediaType) Allowed() bool {
	switch t {
	case MediaJPEG, MediaPNG, MediaPDF:
		return true
	}
	return false
}

// Article is a persisted content record. This is a pure domain model with no
// storage-specific dependencies or tags; it can be used across layers (HTTP,
// service, repository) without coupling to persistence.
//
// The record is serialized as-is into its on-disk JSON file, named by ID.
type Article struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment describes one binary file owned by an article. StoredName is the
// collision-resistant filename under the content area; OriginalName is the
// client-supplied display name and is never used for path resolution.
type Attachment struct {
	StoredName   string    `json:"storedName"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	MediaType    MediaType `json:"mediaType"`
}

// AttachmentCandidate is an upload that has not been accepted yet: the
// client-supplied name, a stream of the bytes, the declared size and media
// type. Validation happens in the content store before any write.
type AttachmentCandidate struct {
	Name         string
	Reader       io.Reader
	Size         int64
	DeclaredType MediaType
}

package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"articleapi/internal/model"
)

// Package storage contains the content store for attachment bytes. The store
// holds raw files only; all attachment metadata lives inside the referencing
// article's record. Backends must validate candidates before writing and must
// never resolve a name outside their content area.

// ContentStore is the attachment byte store consumed by the article
// repository and the transport layer.
type ContentStore interface {
	// Save validates the candidate (declared media type, size bound) and, on
	// acceptance, writes its bytes under a freshly synthesized stored
	// filename. A rejected candidate leaves nothing behind.
	Save(ctx context.Context, cand model.AttachmentCandidate) (model.Attachment, error)
	// Open returns the stored bytes as a streaming reader. Unknown names and
	// path-traversal attempts both report model.ErrNotFound.
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)
	// Delete removes a stored file. A missing file reports model.ErrNotFound
	// so batch reconciliation can log it and proceed; deletion is permanent
	// and stored names are never reused.
	Delete(ctx context.Context, storedName string) error
}

// validateCandidate enforces the acceptance rules shared by every backend:
// a readable stream, an allowed declared media type, and a declared size in
// (0, MaxAttachmentSize]. Runs before any byte is written.
func validateCandidate(cand model.AttachmentCandidate) error {
	if cand.Reader == nil {
		return model.NewValidationError("attachment", "missing content")
	}
	if !cand.DeclaredType.Allowed() {
		return model.NewValidationError("attachment", fmt.Sprintf("unsupported media type %q", cand.DeclaredType))
	}
	if cand.Size <= 0 {
		return model.NewValidationError("attachment", "size must be positive")
	}
	if cand.Size > model.MaxAttachmentSize {
		return model.NewValidationError("attachment", fmt.Sprintf("size %d exceeds limit of %d bytes", cand.Size, model.MaxAttachmentSize))
	}
	return nil
}

// storedName synthesizes a collision-resistant filename: upload time in
// milliseconds, a dash, then the sanitized original name. The millisecond
// prefix keeps names unique per upload instant; backends bump it on the rare
// same-millisecond collision.
func storedName(millis int64, original string) string {
	return fmt.Sprintf("%d-%s", millis, sanitizeName(original))
}

// sanitizeName reduces a client-supplied filename to a flat, portable name.
// The original name is display data only and is never trusted for path
// resolution.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	// Collapse dot runs: safeName refuses any name containing "..", so a
	// stored name synthesized from an original like "report..final.pdf" would
	// otherwise be unresolvable forever.
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	out = strings.Trim(out, ".")
	if out == "" {
		return "file"
	}
	return out
}

// safeName reports whether a stored name can be resolved inside the content
// area. Separators, parent references and empty names are rejected; callers
// surface the rejection uniformly as not-found.
func safeName(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return true
}

// nowMillis is swapped in tests for deterministic stored names.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

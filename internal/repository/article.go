package repository

import (
	"context"
	"time"

	"articleapi/internal/model"
)

// Package repository contains data access for article records.
// Implementations live in subpackages (e.g., fsdb) inside this directory.

// ArticleRepository owns article records and their attachment lifecycle.
// Create/Update/Delete reconcile attachment files through the content store;
// the invariant is that every attachment reference in a successfully written
// record points at a file currently present in the content area.
type ArticleRepository interface {
	// Create validates title/content, persists the attachment candidates,
	// then writes the record atomically. A failing candidate aborts the
	// create and removes any attachments already saved for it.
	Create(ctx context.Context, title, content string, candidates []model.AttachmentCandidate) (*model.Article, error)

	// Get returns the record by id, or model.ErrNotFound.
	Get(ctx context.Context, id string) (*model.Article, error)

	// List returns summaries of all records sorted by creation time
	// descending (tie: id descending). An empty store yields an empty
	// slice, never an error.
	List(ctx context.Context) ([]ArticleSummary, error)

	// Update replaces title/content and reconciles the attachment list:
	// removed stored names are deleted best-effort, new candidates are
	// appended in upload order, then the record is rewritten atomically
	// with a fresh update timestamp.
	Update(ctx context.Context, id, title, content string, removedStoredNames []string, added []model.AttachmentCandidate) (*model.Article, error)

	// Delete removes every referenced attachment file (best-effort per
	// file), then the record itself. Returns model.ErrNotFound if the
	// record does not exist.
	Delete(ctx context.Context, id string) error
}

// ArticleSummary is the listing projection: enough for an index view, no
// body or attachment data.
type ArticleSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

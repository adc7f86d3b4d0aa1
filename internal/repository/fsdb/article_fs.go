package fsdb

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"articleapi/internal/model"
	"articleapi/internal/repository"
	"articleapi/internal/storage"
)

const recordExt = ".json"

// ArticleFS is the filesystem implementation of repository.ArticleRepository:
// one JSON record file per article under the data directory, named by id.
// Record writes go through a temp file and a rename, so a concurrent reader
// never observes a half-written record. Attachment bytes live in the content
// store; this repository keeps the references and the files consistent.
type ArticleFS struct {
	dir     string
	content storage.ContentStore
	ids     *idGenerator
	log     *logrus.Logger
}

// NewArticleFS creates the repository rooted at dir, creating the directory
// if needed. The id generator is seeded from the records already on disk so
// a restart cannot reissue an existing id.
func NewArticleFS(dir string, content storage.ContentStore, log *logrus.Logger) (*ArticleFS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &model.StorageError{Op: "init data dir", Err: err}
	}
	seed, err := maxRecordID(dir)
	if err != nil {
		return nil, err
	}
	return &ArticleFS{dir: dir, content: content, ids: newIDGenerator(seed), log: log}, nil
}

var _ repository.ArticleRepository = (*ArticleFS)(nil)

// maxRecordID scans dir for the numerically largest record id.
func maxRecordID(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, &model.StorageError{Op: "scan data dir", Err: err}
	}
	var max int64
	for _, e := range entries {
		id, ok := recordID(e)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

// recordID extracts the article id from a directory entry, or reports that
// the entry is not a record file.
func recordID(e fs.DirEntry) (string, bool) {
	if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
		return "", false
	}
	id := strings.TrimSuffix(e.Name(), recordExt)
	if !isRecordID(id) {
		return "", false
	}
	return id, true
}

func (r *ArticleFS) Create(ctx context.Context, title, content string, candidates []model.AttachmentCandidate) (*model.Article, error) {
	if err := validateArticleInput(title, content); err != nil {
		return nil, err
	}

	saved := make([]model.Attachment, 0, len(candidates))
	for _, cand := range candidates {
		att, err := r.content.Save(ctx, cand)
		if err != nil {
			// One bad candidate aborts the whole create; compensate by
			// removing what was already written.
			r.discard(ctx, saved)
			return nil, err
		}
		saved = append(saved, att)
	}

	now := time.Now().UTC()
	article := &model.Article{
		ID:          r.ids.next(now),
		Title:       strings.TrimSpace(title),
		Content:     strings.TrimSpace(content),
		CreatedAt:   now,
		Attachments: saved,
	}

	if err := r.writeRecord(article); err != nil {
		r.discard(ctx, saved)
		return nil, err
	}
	return article, nil
}

func (r *ArticleFS) Get(ctx context.Context, id string) (*model.Article, error) {
	return r.readRecord(id)
}

func (r *ArticleFS) List(ctx context.Context) ([]repository.ArticleSummary, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, &model.StorageError{Op: "scan data dir", Err: err}
	}

	summaries := make([]repository.ArticleSummary, 0, len(entries))
	for _, e := range entries {
		id, ok := recordID(e)
		if !ok {
			continue
		}
		article, err := r.readRecord(id)
		if err != nil {
			// A single unreadable record must not poison the listing.
			r.log.WithError(err).WithField("article_id", id).Warn("skipping unreadable article record")
			continue
		}
		summaries = append(summaries, repository.ArticleSummary{
			ID:        article.ID,
			Title:     article.Title,
			CreatedAt: article.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		// Equal timestamps: newer id first. Ids are monotonic, so this is
		// most-recently-created-first.
		return compareIDs(summaries[i].ID, summaries[j].ID) > 0
	})
	return summaries, nil
}

func (r *ArticleFS) Update(ctx context.Context, id, title, content string, removedStoredNames []string, added []model.AttachmentCandidate) (*model.Article, error) {
	article, err := r.readRecord(id)
	if err != nil {
		return nil, err
	}
	if err := validateArticleInput(title, content); err != nil {
		return nil, err
	}

	// Reconciliation order: delete removed files (best-effort), drop their
	// references, save and append new candidates, stamp, rewrite.
	removed := make(map[string]bool, len(removedStoredNames))
	for _, name := range removedStoredNames {
		removed[name] = true
		if err := r.content.Delete(ctx, name); err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"article_id":  id,
				"stored_name": name,
			}).Warn("could not delete removed attachment")
		}
	}

	kept := make([]model.Attachment, 0, len(article.Attachments))
	for _, att := range article.Attachments {
		if !removed[att.StoredName] {
			kept = append(kept, att)
		}
	}

	appended := make([]model.Attachment, 0, len(added))
	for _, cand := range added {
		att, err := r.content.Save(ctx, cand)
		if err != nil {
			// Same compensation as create, limited to this update's new
			// files. The removed files are already gone; that phase is
			// best-effort by contract.
			r.discard(ctx, appended)
			return nil, err
		}
		appended = append(appended, att)
	}

	now := time.Now().UTC()
	article.Title = strings.TrimSpace(title)
	article.Content = strings.TrimSpace(content)
	article.Attachments = append(kept, appended...)
	article.UpdatedAt = &now

	if err := r.writeRecord(article); err != nil {
		r.discard(ctx, appended)
		return nil, err
	}
	return article, nil
}

func (r *ArticleFS) Delete(ctx context.Context, id string) error {
	article, err := r.readRecord(id)
	switch {
	case err == nil:
		// Attachment cleanup is best-effort per file: a failure is logged
		// and the record deletion still goes ahead.
		for _, att := range article.Attachments {
			if err := r.content.Delete(ctx, att.StoredName); err != nil {
				r.log.WithError(err).WithFields(logrus.Fields{
					"article_id":  id,
					"stored_name": att.StoredName,
				}).Warn("could not delete attachment of removed article")
			}
		}
	case errors.Is(err, model.ErrNotFound):
		return err
	default:
		// The record exists but cannot be read. Its attachment references
		// are lost, but the record itself must still be removable, same
		// best-effort stance as the per-file cleanup above.
		r.log.WithError(err).WithField("article_id", id).Warn("deleting article with unreadable record")
	}

	if err := os.Remove(r.recordPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ErrNotFound
		}
		return &model.StorageError{Op: "delete article record", Err: err}
	}
	return nil
}

func (r *ArticleFS) recordPath(id string) string {
	return filepath.Join(r.dir, id+recordExt)
}

func (r *ArticleFS) readRecord(id string) (*model.Article, error) {
	if !isRecordID(id) {
		return nil, model.ErrNotFound
	}
	data, err := os.ReadFile(r.recordPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrNotFound
		}
		return nil, &model.StorageError{Op: "read article record", Err: err}
	}
	var article model.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, &model.StorageError{Op: "decode article record", Err: err}
	}
	if article.Attachments == nil {
		article.Attachments = []model.Attachment{}
	}
	return &article, nil
}

// writeRecord persists the record atomically: encode into a temp file in the
// same directory, then rename over the final name. The temp name carries no
// .json suffix, so a listing scan never picks it up.
func (r *ArticleFS) writeRecord(article *model.Article) error {
	tmp, err := os.CreateTemp(r.dir, "."+article.ID+".tmp-")
	if err != nil {
		return &model.StorageError{Op: "create temp record", Err: err}
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(article); err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(tmp.Name())
		return &model.StorageError{Op: "write article record", Err: err}
	}

	if err := os.Rename(tmp.Name(), r.recordPath(article.ID)); err != nil {
		os.Remove(tmp.Name())
		return &model.StorageError{Op: "commit article record", Err: err}
	}
	return nil
}

// discard removes attachments written during an operation that is being
// aborted. Failures are logged; the original error stays the one reported.
func (r *ArticleFS) discard(ctx context.Context, atts []model.Attachment) {
	for _, att := range atts {
		if err := r.content.Delete(ctx, att.StoredName); err != nil {
			r.log.WithError(err).WithField("stored_name", att.StoredName).Warn("could not roll back saved attachment")
		}
	}
}

package service

import (
	"context"
	"io"

	"articleapi/internal/model"
	"articleapi/internal/notify"
	"articleapi/internal/repository"
	"articleapi/internal/storage"
)

// StoreService is the single API the transport layer calls into. It composes
// the article repository, the content store, and the change notifier, and
// fixes the ordering between persistence and notification: events go out
// only after the repository operation succeeded.
type StoreService interface {
	// CreateArticle persists a new article and, on success, publishes an
	// article_created event carrying id and title.
	CreateArticle(ctx context.Context, title, content string, attachments []model.AttachmentCandidate) (*model.Article, error)

	// GetArticle returns the full article by id. Never touches the notifier.
	GetArticle(ctx context.Context, id string) (*model.Article, error)

	// ListArticles returns summaries, newest first. Never touches the notifier.
	ListArticles(ctx context.Context) ([]repository.ArticleSummary, error)

	// UpdateArticle edits an article in place and, on success, publishes an
	// article_updated event.
	UpdateArticle(ctx context.Context, id, title, content string, removedStoredNames []string, added []model.AttachmentCandidate) (*model.Article, error)

	// DeleteArticle removes the article and its attachment files. No event
	// is published for deletions; viewers are only notified of created and
	// updated content.
	DeleteArticle(ctx context.Context, id string) error

	// OpenAttachment streams stored attachment bytes for the transport
	// layer. Unknown and unsafe names both report model.ErrNotFound.
	OpenAttachment(ctx context.Context, storedName string) (io.ReadCloser, error)

	// Subscribe registers a live viewer connection with the notifier.
	Subscribe() *notify.Subscription

	// Unsubscribe removes a viewer connection. Idempotent.
	Unsubscribe(sub *notify.Subscription)
}

// articleStore is the concrete StoreService.
type articleStore struct {
	repo    repository.ArticleRepository
	content storage.ContentStore
	hub     *notify.Hub
}

// NewStoreService constructs the store facade.
func NewStoreService(repo repository.ArticleRepository, content storage.ContentStore, hub *notify.Hub) StoreService {
	return &articleStore{repo: repo, content: content, hub: hub}
}

func (s *articleStore) CreateArticle(ctx context.Context, title, content string, attachments []model.AttachmentCandidate) (*model.Article, error) {
	article, err := s.repo.Create(ctx, title, content, attachments)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(model.CreatedEvent(article))
	return article, nil
}

func (s *articleStore) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	return s.repo.Get(ctx, id)
}

func (s *articleStore) ListArticles(ctx context.Context) ([]repository.ArticleSummary, error) {
	return s.repo.List(ctx)
}

func (s *articleStore) UpdateArticle(ctx context.Context, id, title, content string, removedStoredNames []string, added []model.AttachmentCandidate) (*model.Article, error) {
	article, err := s.repo.Update(ctx, id, title, content, removedStoredNames, added)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(model.UpdatedEvent(article))
	return article, nil
}

func (s *articleStore) DeleteArticle(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *articleStore) OpenAttachment(ctx context.Context, storedName string) (io.ReadCloser, error) {
	return s.content.Open(ctx, storedName)
}

func (s *articleStore) Subscribe() *notify.Subscription {
	return s.hub.Subscribe()
}

func (s *articleStore) Unsubscribe(sub *notify.Subscription) {
	s.hub.Unsubscribe(sub)
}

package mocks

import (
	"context"
	"io"

	"articleapi/internal/model"
	"articleapi/internal/notify"
	"articleapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockStoreService struct {
	mock.Mock
}

func (m *MockStoreService) CreateArticle(ctx context.Context, title, content string, attachments []model.AttachmentCandidate) (*model.Article, error) {
	args := m.Called(ctx, title, content, attachments)
	if a, ok := args.Get(0).(*model.Article); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoreService) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*model.Article); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoreService) ListArticles(ctx context.Context) ([]repository.ArticleSummary, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).([]repository.ArticleSummary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoreService) UpdateArticle(ctx context.Context, id, title, content string, removedStoredNames []string, added []model.AttachmentCandidate) (*model.Article, error) {
	args := m.Called(ctx, id, title, content, removedStoredNames, added)
	if a, ok := args.Get(0).(*model.Article); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoreService) DeleteArticle(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoreService) OpenAttachment(ctx context.Context, storedName string) (io.ReadCloser, error) {
	args := m.Called(ctx, storedName)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockStoreService) Subscribe() *notify.Subscription {
	args := m.Called()
	sub, _ := args.Get(0).(*notify.Subscription)
	return sub
}

func (m *MockStoreService) Unsubscribe(sub *notify.Subscription) {
	m.Called(sub)
}

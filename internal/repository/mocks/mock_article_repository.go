package mocks

import (
	"context"

	"articleapi/internal/model"
	"articleapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, title, content string, candidates []model.AttachmentCandidate) (*model.Article, error) {
	args := m.Called(ctx, title, content, candidates)
	if a, ok := args.Get(0).(*model.Article); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArticleRepository) Get(ctx context.Context, id string) (*model.Article, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*model.Article); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArticleRepository) List(ctx context.Context) ([]repository.ArticleSummary, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).([]repository.ArticleSummary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArticleRepository) Update(ctx context.Context, id, title, content string, removedStoredNames []string, added []model.AttachmentCandidate) (*model.Article, error) {
	args := m.Called(ctx, id, title, content, removedStoredNames, added)
	if a, ok := args.Get(0).(*model.Article); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

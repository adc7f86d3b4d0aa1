package mocks

import (
	"context"
	"io"

	"articleapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Save(ctx context.Context, cand model.AttachmentCandidate) (model.Attachment, error) {
	args := m.Called(ctx, cand)
	if f, ok := args.Get(0).(func(context.Context, model.AttachmentCandidate) model.Attachment); ok {
		return f(ctx, cand), args.Error(1)
	}
	return args.Get(0).(model.Attachment), args.Error(1)
}

func (m *MockContentStore) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	args := m.Called(ctx, storedName)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockContentStore) Delete(ctx context.Context, storedName string) error {
	args := m.Called(ctx, storedName)
	return args.Error(0)
}

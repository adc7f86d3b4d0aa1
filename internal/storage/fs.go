package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"articleapi/internal/model"
)

// fsStore is the default content backend: one raw file per attachment under
// a local content directory. It matches the persisted layout contract, so a
// record's attachment references always point at plain files next to the
// data directory.
type fsStore struct {
	dir string
	log *logrus.Logger
}

// NewFS creates the filesystem content store rooted at dir, creating the
// directory if needed.
func NewFS(dir string, log *logrus.Logger) (ContentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &model.StorageError{Op: "init content dir", Err: err}
	}
	return &fsStore{dir: dir, log: log}, nil
}

func (s *fsStore) Save(ctx context.Context, cand model.AttachmentCandidate) (model.Attachment, error) {
	if err := validateCandidate(cand); err != nil {
		return model.Attachment{}, err
	}

	// O_EXCL guarantees a stored name is written exactly once; on a
	// same-millisecond collision the prefix is bumped until a fresh name is
	// found.
	var (
		f    *os.File
		name string
	)
	for millis := nowMillis(); ; millis++ {
		name = storedName(millis, cand.Name)
		var err error
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return model.Attachment{}, &model.StorageError{Op: "create attachment file", Err: err}
		}
	}

	// The declared size was validated; the actual stream is still capped so a
	// lying client cannot write past the limit.
	written, err := io.Copy(f, io.LimitReader(cand.Reader, model.MaxAttachmentSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > model.MaxAttachmentSize {
		err = model.NewValidationError("attachment", "content exceeds declared size limit")
	}
	if err != nil {
		if rmErr := os.Remove(filepath.Join(s.dir, name)); rmErr != nil {
			s.log.WithError(rmErr).WithField("stored_name", name).Warn("failed to remove partial attachment file")
		}
		if model.IsValidation(err) {
			return model.Attachment{}, err
		}
		return model.Attachment{}, &model.StorageError{Op: "write attachment file", Err: err}
	}

	return model.Attachment{
		StoredName:   name,
		OriginalName: cand.Name,
		Size:         written,
		MediaType:    cand.DeclaredType,
	}, nil
}

func (s *fsStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !safeName(name) {
		return nil, model.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrNotFound
		}
		return nil, &model.StorageError{Op: "open attachment file", Err: err}
	}
	return f, nil
}

func (s *fsStore) Delete(ctx context.Context, name string) error {
	if !safeName(name) {
		return model.ErrNotFound
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ErrNotFound
		}
		return &model.StorageError{Op: "delete attachment file", Err: err}
	}
	return nil
}

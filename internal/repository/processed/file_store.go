package processed

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	apperrors "github.com/Taichi-iskw/yt-scribe/internal/errors"
	"github.com/Taichi-iskw/yt-scribe/internal/model"
	"github.com/Taichi-iskw/yt-scribe/internal/storage"
)

// FileStore keeps the set in a JSON array file and rewrites the whole file on every mark
type FileStore struct {
	path string
	mu   sync.RWMutex
	set  model.ProcessedSet
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		set:  model.ProcessedSet{},
	}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the file; a missing file yields an empty set
func (s *FileStore) Load(ctx context.Context) (model.ProcessedSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.set = model.ProcessedSet{}
			s.mu.Unlock()
			return model.ProcessedSet{}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to read processed set "+s.path)
	}

	var ids []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStorage, "processed set is corrupt: "+s.path)
		}
	}

	set := model.NewProcessedSet(ids...)
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()

	return set.Clone(), nil
}

func (s *FileStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Contains(id)
}

// MarkProcessed writes the set including id; memory is updated only after the write succeeded
func (s *FileStore) MarkProcessed(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.New(apperrors.CodeInvalidArg, "video id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set.Contains(id) {
		return nil
	}

	next := s.set.Clone()
	next.Add(id)

	data, err := json.MarshalIndent(next.IDs(), "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorage, "failed to encode processed set")
	}
	if err := storage.WriteFile(s.path, append(data, '\n')); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorage, "failed to write processed set "+s.path)
	}

	s.set = next
	return nil
}

func (s *FileStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.IDs()
}

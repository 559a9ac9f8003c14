package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func pngUpload(name string) ImageUpload {
	return ImageUpload{Filename: name, Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)}
}

// memoryImageStore keeps stored files in a map
type memoryImageStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	failOn  int // fail the n-th Save (1-based); 0 never fails
	saves   int
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{files: make(map[string][]byte)}
}

func (s *memoryImageStore) Save(ctx context.Context, key, contentType string, content io.Reader) (StoredImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failOn > 0 && s.saves == s.failOn {
		return StoredImage{}, errors.New("disk full")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return StoredImage{}, err
	}
	s.files[key] = data
	return StoredImage{Key: key, URL: "/uploads/" + key}, nil
}

func (s *memoryImageStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memoryImageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// MockImageStore is a mock implementation of ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, key, contentType string, content io.Reader) (StoredImage, error) {
	args := m.Called(ctx, key, contentType, content)
	return args.Get(0).(StoredImage), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type fixture struct {
	repos      *persistence.Repositories
	images     *memoryImageStore
	products   *ProductService
	categories *CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := persistence.NewRepositories(testdb.New(t))
	images := newMemoryImageStore()
	return &fixture{
		repos:      repos,
		images:     images,
		products:   NewProductService(repos.Products, repos.Categories, repos.Stocks, images, repos.Transactions, zaptest.NewLogger(t)),
		categories: NewCategoryService(repos.Categories, repos.Transactions),
	}
}

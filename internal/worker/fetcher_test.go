package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akorchak/urlstash-server/internal/model"
	"github.com/akorchak/urlstash-server/internal/testutil"
)

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Create(ctx context.Context, file model.File) (model.File, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(model.File), args.Error(1)
}

func (m *MockFileStore) GetByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (model.File, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(model.File), args.Error(1)
}

func (m *MockFileStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.File, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileStore) UpdateSize(ctx context.Context, id uuid.UUID, size int64) error {
	args := m.Called(ctx, id, size)
	return args.Error(0)
}

func (m *MockFileStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileStore) DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) (int64, error) {
	args := m.Called(ctx, key, reader)
	if fn, ok := args.Get(0).(func(io.Reader) int64); ok {
		return fn(reader), args.Error(1)
	}
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func newFetcher(fileStore *MockFileStore, storage *MockStorage) *Fetcher {
	return NewFetcher(fileStore, storage, 0, testutil.MakeNoopLogger())
}

func TestFetcher_Process(t *testing.T) {
	fileID := uuid.New()
	storageKey := uuid.New().String() + "/payload.bin"

	t.Run("success updates size", func(t *testing.T) {
		payload := "downloaded file content, 29 b"

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			io.WriteString(w, payload)
		}))
		defer srv.Close()

		fileStore := new(MockFileStore)
		storage := new(MockStorage)

		storage.On("Upload", mock.Anything, storageKey, mock.Anything).
			Return(func(r io.Reader) int64 {
				n, _ := io.Copy(io.Discard, r)
				return n
			}, nil)
		fileStore.On("UpdateSize", mock.Anything, fileID, int64(len(payload))).Return(nil)

		f := newFetcher(fileStore, storage)

		err := f.Process(context.Background(), model.FetchJob{
			SourceURL:  srv.URL + "/payload.bin",
			FileID:     fileID,
			StorageKey: storageKey,
		})
		require.NoError(t, err)

		fileStore.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("remote error purges record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		fileStore := new(MockFileStore)
		storage := new(MockStorage)

		fileStore.On("DeleteByID", mock.Anything, fileID).Return(nil)

		f := newFetcher(fileStore, storage)

		err := f.Process(context.Background(), model.FetchJob{
			SourceURL:  srv.URL + "/missing.bin",
			FileID:     fileID,
			StorageKey: storageKey,
		})
		require.NoError(t, err)

		fileStore.AssertExpectations(t)
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
		fileStore.AssertNotCalled(t, "UpdateSize", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unreachable remote purges record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		fileStore := new(MockFileStore)
		fileStore.On("DeleteByID", mock.Anything, fileID).Return(nil)

		f := newFetcher(fileStore, new(MockStorage))

		err := f.Process(context.Background(), model.FetchJob{
			SourceURL:  srv.URL + "/payload.bin",
			FileID:     fileID,
			StorageKey: storageKey,
		})
		require.NoError(t, err)

		fileStore.AssertExpectations(t)
	})

	t.Run("storage failure is retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "content")
		}))
		defer srv.Close()

		fileStore := new(MockFileStore)
		storage := new(MockStorage)

		storage.On("Upload", mock.Anything, storageKey, mock.Anything).
			Return(int64(0), errors.New("storage down"))

		f := newFetcher(fileStore, storage)

		err := f.Process(context.Background(), model.FetchJob{
			SourceURL:  srv.URL + "/payload.bin",
			FileID:     fileID,
			StorageKey: storageKey,
		})
		require.Error(t, err)

		fileStore.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("record deleted during download", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "content")
		}))
		defer srv.Close()

		fileStore := new(MockFileStore)
		storage := new(MockStorage)

		storage.On("Upload", mock.Anything, storageKey, mock.Anything).Return(int64(7), nil)
		fileStore.On("UpdateSize", mock.Anything, fileID, int64(7)).Return(nil)

		f := newFetcher(fileStore, storage)

		err := f.Process(context.Background(), model.FetchJob{
			SourceURL:  srv.URL + "/payload.bin",
			FileID:     fileID,
			StorageKey: storageKey,
		})
		require.NoError(t, err)
	})
}

func TestFetcher_HandleMessage(t *testing.T) {
	t.Run("valid message", func(t *testing.T) {
		fileID := uuid.New()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "abc")
		}))
		defer srv.Close()

		fileStore := new(MockFileStore)
		storage := new(MockStorage)

		storage.On("Upload", mock.Anything, "key", mock.Anything).Return(int64(3), nil)
		fileStore.On("UpdateSize", mock.Anything, fileID, int64(3)).Return(nil)

		f := newFetcher(fileStore, storage)

		data, err := json.Marshal(model.FetchJob{
			SourceURL:  srv.URL + "/a.txt",
			FileID:     fileID,
			StorageKey: "key",
		})
		require.NoError(t, err)

		err = f.HandleMessage(context.Background(), data)
		require.NoError(t, err)
	})

	t.Run("malformed message", func(t *testing.T) {
		f := newFetcher(new(MockFileStore), new(MockStorage))

		err := f.HandleMessage(context.Background(), []byte("not json"))
		require.Error(t, err)
	})
}

package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/akorchak/urlstash-server/internal/model"
)

// MockFileStore mocks the FileStore interface
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

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) (int64, error) {
	args := m.Called(ctx, key, reader)
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

// MockJobQueue mocks the JobQueue interface
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueFetchJob(ctx context.Context, job model.FetchJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockRefreshTokenStore mocks the RefreshTokenStore interface
type MockRefreshTokenStore struct {
	mock.Mock
}

func (m *MockRefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenStore) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	args := m.Called(ctx, jti)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenStore) RevokeByJTI(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) GenerateRefreshToken(userID uuid.UUID) (string, string, error) {
	args := m.Called(userID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenManager) ParseRefreshToken(token string) (uuid.UUID, string, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

// MockPasswordHasher mocks the PasswordHasher interface
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) ([]byte, error) {
	args := m.Called(password)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash []byte, password string) bool {
	args := m.Called(hash, password)
	return args.Bool(0)
}

package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"animalsquad/internal/model"
	"animalsquad/internal/repository"
	"animalsquad/internal/storage"
)

// MockPetRepository is a mock implementation of PetRepository.
type MockPetRepository struct {
	mock.Mock
}

func (m *MockPetRepository) Create(ctx context.Context, pet *model.Pet) error {
	args := m.Called(ctx, pet)
	return args.Error(0)
}

func (m *MockPetRepository) Save(ctx context.Context, pet *model.Pet) error {
	args := m.Called(ctx, pet)
	return args.Error(0)
}

func (m *MockPetRepository) FindByID(ctx context.Context, id uint) (*model.Pet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pet), args.Error(1)
}

func (m *MockPetRepository) FindByLoginID(ctx context.Context, loginID string) (*model.Pet, error) {
	args := m.Called(ctx, loginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pet), args.Error(1)
}

func (m *MockPetRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	args := m.Called(ctx, loginID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPetRepository) DeleteByID(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAddressRepository is a mock implementation of AddressRepository.
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByCode(ctx context.Context, code int) (*model.Address, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockAddressRepository) Upsert(ctx context.Context, address *model.Address) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

// MockPostRepository is a mock implementation of PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) FindAllByPetID(ctx context.Context, petID uint, page, size int) (*model.Page[model.Post], error) {
	args := m.Called(ctx, petID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.Post]), args.Error(1)
}

// MockFileStorage is a mock implementation of storage.FileStorage.
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) UploadImage(ctx context.Context, file *storage.File, folder string) (string, error) {
	args := m.Called(ctx, file, folder)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) DeleteFile(ctx context.Context, fileURL, folder string) error {
	args := m.Called(ctx, fileURL, folder)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, loginID, token string, ttl time.Duration) error {
	args := m.Called(ctx, loginID, token, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, loginID string) (string, error) {
	args := m.Called(ctx, loginID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, loginID string) error {
	args := m.Called(ctx, loginID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// passThroughUnitOfWork runs fn directly against fixed repositories.
type passThroughUnitOfWork struct {
	repos repository.Repositories
}

func (u *passThroughUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return fn(ctx, u.repos)
}

package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/cache"
	errs "fintrack/internal/errors"
	"fintrack/internal/model"
)

// fakeStorage records puts and deletes in memory.
type fakeStorage struct {
	objects map[string]string
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]string{}}
}

func (f *fakeStorage) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = string(data)
	return nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) URL(key string) string {
	return "http://localhost:5000/storage/" + key
}

func newTestCache(t *testing.T) *cache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestProfileService_Get(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
		ID:    1,
		Name:  "Test User",
		Email: "test@example.com",
	}, nil).Once()

	svc := NewProfileService(mockRepo, newFakeStorage(), newTestCache(t))
	ctx := context.Background()

	user, err := svc.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Test User", user.Name)

	// Second read is served from the cache; the single Once expectation
	// fails the test if the repository is hit again.
	cached, err := svc.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, cached.Email)

	mockRepo.AssertExpectations(t)
}

func TestProfileService_GetUnknownUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProfileService(mockRepo, newFakeStorage(), newTestCache(t))

	_, err := svc.Get(context.Background(), 9)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestProfileService_Patch(t *testing.T) {
	newName := "New Name"
	newEmail := "new@example.com"
	newPassword := "NewSecret1!"

	tests := []struct {
		name          string
		update        ProfileUpdate
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:   "name only",
			update: ProfileUpdate{Name: &newName},
			setupMock: func(m *MockUserRepository) {
				m.On("UpdateFields", mock.Anything, uint(1), map[string]interface{}{"name": newName}).Return(nil)
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Name: newName}, nil)
			},
		},
		{
			name:   "email taken by another user",
			update: ProfileUpdate{Email: &newEmail},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, newEmail).Return(&model.User{ID: 2, Email: newEmail}, nil)
			},
			expectedError: errs.ErrEmailTaken,
		},
		{
			name:   "own email is not a conflict",
			update: ProfileUpdate{Email: &newEmail},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, newEmail).Return(&model.User{ID: 1, Email: newEmail}, nil)
				m.On("UpdateFields", mock.Anything, uint(1), map[string]interface{}{"email": newEmail}).Return(nil)
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: newEmail}, nil)
			},
		},
		{
			name:   "password is re-hashed",
			update: ProfileUpdate{Password: &newPassword},
			setupMock: func(m *MockUserRepository) {
				m.On("UpdateFields", mock.Anything, uint(1), mock.MatchedBy(func(fields map[string]interface{}) bool {
					hash, ok := fields["password_hash"].(string)
					if !ok || len(fields) != 1 {
						return false
					}
					return bcrypt.CompareHashAndPassword([]byte(hash), []byte(newPassword)) == nil
				})).Return(nil)
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
			},
		},
		{
			name:   "empty update touches nothing",
			update: ProfileUpdate{},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewProfileService(mockRepo, newFakeStorage(), newTestCache(t))
			user, err := svc.Patch(context.Background(), 1, tt.update)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProfileService_PutAvatar(t *testing.T) {
	oldKey := "avatars/1/old.png"

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Avatar: &oldKey}, nil)
	mockRepo.On("UpdateAvatar", mock.Anything, uint(1), mock.AnythingOfType("*string")).Return(nil)

	store := newFakeStorage()
	store.objects[oldKey] = "old-bytes"

	svc := NewProfileService(mockRepo, store, newTestCache(t))
	stored, err := svc.PutAvatar(context.Background(), 1, Upload{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        128,
		Body:        strings.NewReader("new-bytes"),
	})

	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Contains(t, stored.Path, "avatars/1/")
	assert.True(t, strings.HasSuffix(stored.Path, ".png"))
	assert.Equal(t, "new-bytes", store.objects[stored.Path])

	// The previous file is gone.
	assert.Contains(t, store.deleted, oldKey)
	mockRepo.AssertExpectations(t)
}

func TestProfileService_PutAvatarRejections(t *testing.T) {
	tests := []struct {
		name          string
		upload        Upload
		expectedError error
	}{
		{
			name: "too large",
			upload: Upload{
				Filename:    "big.png",
				ContentType: "image/png",
				Size:        MaxAvatarBytes + 1,
				Body:        strings.NewReader(""),
			},
			expectedError: errs.ErrFileTooLarge,
		},
		{
			name: "unsupported type",
			upload: Upload{
				Filename:    "notes.pdf",
				ContentType: "application/pdf",
				Size:        128,
				Body:        strings.NewReader(""),
			},
			expectedError: errs.ErrUnsupportedImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProfileService(new(MockUserRepository), newFakeStorage(), newTestCache(t))

			_, err := svc.PutAvatar(context.Background(), 1, tt.upload)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestProfileService_DeleteAvatar(t *testing.T) {
	avatarKey := "avatars/1/a.png"

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Avatar: &avatarKey}, nil)
	mockRepo.On("UpdateAvatar", mock.Anything, uint(1), (*string)(nil)).Return(nil)

	store := newFakeStorage()
	store.objects[avatarKey] = "bytes"

	svc := NewProfileService(mockRepo, store, newTestCache(t))
	assert.NoError(t, svc.DeleteAvatar(context.Background(), 1))
	assert.NotContains(t, store.objects, avatarKey)
	mockRepo.AssertExpectations(t)
}

func TestProfileService_DeleteAvatarWhenNoneSet(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
	mockRepo.On("UpdateAvatar", mock.Anything, uint(1), (*string)(nil)).Return(nil)

	store := newFakeStorage()
	svc := NewProfileService(mockRepo, store, newTestCache(t))

	assert.NoError(t, svc.DeleteAvatar(context.Background(), 1))
	assert.Empty(t, store.deleted)
	mockRepo.AssertExpectations(t)
}

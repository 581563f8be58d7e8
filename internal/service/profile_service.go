package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/cache"
	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
	"fintrack/internal/storage"
)

const (
	// MaxAvatarBytes is the avatar upload size ceiling.
	MaxAvatarBytes = 2 << 20

	profileCacheTTL = 5 * time.Minute
)

// imageExtensions maps accepted image content types to stored extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProfileUpdate is the allow-listed set of mutable profile fields. Nil
// means "leave untouched"; there is no way to smuggle other columns in.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// Upload describes an incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredFile reports where an uploaded file ended up.
type StoredFile struct {
	Path string
	URL  string
}

// ProfileService mutates a user's own record and manages the avatar file
// lifecycle.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (*model.User, error)
	Patch(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error)
	PutAvatar(ctx context.Context, userID uint, upload Upload) (*StoredFile, error)
	DeleteAvatar(ctx context.Context, userID uint) error
}

type profileService struct {
	users   repository.UserRepository
	storage storage.Storage
	cache   *cache.Client
}

// NewProfileService builds a ProfileService.
func NewProfileService(users repository.UserRepository, store storage.Storage, cache *cache.Client) ProfileService {
	return &profileService{users: users, storage: store, cache: cache}
}

func (s *profileService) cacheKey(id uint) string {
	return fmt.Sprintf("user_profile:%d", id)
}

// Get returns the user's own record, read through the profile cache.
func (s *profileService) Get(ctx context.Context, userID uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(userID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(userID), payload, profileCacheTTL)
	}
	return user, nil
}

// Patch applies only the supplied fields. A supplied email is re-checked
// for uniqueness against all other users; a supplied password is re-hashed.
func (s *profileService) Patch(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error) {
	fields := map[string]interface{}{}

	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		other, err := s.users.FindByEmail(ctx, *update.Email)
		if err == nil && other.ID != userID {
			return nil, errs.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email uniqueness: %w", err)
		}
		fields["email"] = *update.Email
	}
	if update.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password_hash"] = string(hashed)
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		_ = s.cache.Delete(ctx, s.cacheKey(userID))
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	return user, nil
}

// PutAvatar stores the new file first, points the record at it, and only
// then deletes the previous file, so the reference never dangles.
func (s *profileService) PutAvatar(ctx context.Context, userID uint, upload Upload) (*StoredFile, error) {
	if upload.Size > MaxAvatarBytes {
		return nil, errs.ErrFileTooLarge
	}
	ext, ok := imageExtensions[upload.ContentType]
	if !ok {
		return nil, errs.ErrUnsupportedImage
	}
	if e := strings.ToLower(path.Ext(upload.Filename)); e == ".jpeg" {
		ext = ".jpeg"
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	key := fmt.Sprintf("avatars/%d/%d_%s%s", userID, time.Now().Unix(), shortID(), ext)
	if err := s.storage.Put(ctx, key, upload.ContentType, upload.Body); err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, userID, &key); err != nil {
		// The record still points at the old file; remove the orphan.
		_ = s.storage.Delete(ctx, key)
		return nil, fmt.Errorf("update avatar reference: %w", err)
	}

	if user.Avatar != nil && *user.Avatar != "" {
		_ = s.storage.Delete(ctx, *user.Avatar)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))

	return &StoredFile{Path: key, URL: s.storage.URL(key)}, nil
}

// DeleteAvatar removes the stored file if present and nulls the reference.
// A missing file is not an error; the record is authoritative.
func (s *profileService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	if user.Avatar != nil && *user.Avatar != "" {
		if err := s.storage.Delete(ctx, *user.Avatar); err != nil {
			return fmt.Errorf("delete avatar file: %w", err)
		}
	}
	if err := s.users.UpdateAvatar(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear avatar reference: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return nil
}

func shortID() string {
	return strings.Split(uuid.New().String(), "-")[0]
}

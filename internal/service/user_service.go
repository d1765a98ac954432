package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"natours/internal/model"
	"natours/internal/repository"
	"natours/internal/validate"

	"github.com/disintegration/imaging"
)

var (
	ErrNotAnImage       = errors.New("not an image! please upload only images")
	ErrPhotoTooLarge    = errors.New("photo exceeds the size limit")
	ErrPasswordInUpdate = errors.New("this route is not for password updates, use /updateMyPassword")
)

const (
	// MaxPhotoSize bounds user photo uploads.
	MaxPhotoSize = 5 * 1024 * 1024 // 5MB
	photoSize    = 500             // stored photos are square 500x500 JPEGs
)

// UserService provides profile management for regular users and admins
type UserService interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetAll(ctx context.Context) ([]model.User, error)
	UpdateMe(ctx context.Context, userID int, req model.UpdateMeRequest, photo *multipart.FileHeader) (*model.User, error)
	DeleteMe(ctx context.Context, userID int) error
	AdminUpdate(ctx context.Context, id int, req model.AdminUpdateUserRequest) (*model.User, error)
	AdminDelete(ctx context.Context, id int) error
}

type userService struct {
	userRepo   repository.UserRepository
	uploadsDir string
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, uploadsDir string) UserService {
	return &userService{userRepo: userRepo, uploadsDir: uploadsDir}
}

func (s *userService) GetByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GetAll(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateMe patches the caller's own name, email and photo. Passwords are
// rejected up-front so the dedicated flow with its staleness bookkeeping
// cannot be bypassed.
func (s *userService) UpdateMe(ctx context.Context, userID int, req model.UpdateMeRequest, photo *multipart.FileHeader) (*model.User, error) {
	var photoName *string
	if photo != nil {
		name, err := s.processPhoto(userID, photo)
		if err != nil {
			return nil, err
		}
		photoName = &name
	}

	if req.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*req.Email))
		if failures := (validate.RuleSet{{Field: "email", Rules: []validate.Rule{validate.Email("invalid email")}}}).
			Evaluate(map[string]string{"email": lowered}); len(failures) > 0 {
			return nil, validationError(failures)
		}
		req.Email = &lowered
	}
	if req.Name != nil {
		if failures := (validate.RuleSet{{Field: "name", Rules: []validate.Rule{
			validate.NotEmpty(),
			validate.MinLength(3, "name must be at least 3 characters"),
			validate.LettersOnly("name can only contain letters"),
		}}}).Evaluate(map[string]string{"name": *req.Name}); len(failures) > 0 {
			return nil, validationError(failures)
		}
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, req.Name, req.Email, photoName, nil)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// processPhoto decodes the upload, resizes it to a centered square and
// stores it as user-<id>-<unix>.jpeg under the uploads directory.
func (s *userService) processPhoto(userID int, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded photo: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrNotAnImage
	}

	resized := imaging.Fill(img, photoSize, photoSize, imaging.Center, imaging.Lanczos)

	if err := os.MkdirAll(s.uploadsDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	fileName := fmt.Sprintf("user-%d-%d.jpeg", userID, time.Now().Unix())
	filePath := filepath.Join(s.uploadsDir, fileName)
	if err := imaging.Save(resized, filePath, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	return fileName, nil
}

// DeleteMe soft-deletes the caller's account
func (s *userService) DeleteMe(ctx context.Context, userID int) error {
	if err := s.userRepo.SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// AdminUpdate patches arbitrary profile fields of any user. Passwords
// stay out of reach here as well.
func (s *userService) AdminUpdate(ctx context.Context, id int, req model.AdminUpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, id, req.Name, req.Email, nil, req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AdminDelete removes a user record entirely
func (s *userService) AdminDelete(ctx context.Context, id int) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find user for deletion: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

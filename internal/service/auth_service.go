package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"natours/internal/apperror"
	"natours/internal/model"
	"natours/internal/repository"
	"natours/internal/utils"
	"natours/internal/validate"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("reset token is invalid or has expired")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// resetTokenTTL is how long a password reset token stays valid.
const resetTokenTTL = 10 * time.Minute

// Mailer delivers account notifications out-of-band.
type Mailer interface {
	SendWelcome(ctx context.Context, user *model.User, url string) error
	SendPasswordReset(ctx context.Context, user *model.User, resetURL string) error
}

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, plainToken, password, passwordConfirm string) (*model.User, string, error)
	UpdatePassword(ctx context.Context, userID int, currentPassword, newPassword string) (*model.User, string, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtUtil   *utils.JWTUtil
	mailer    Mailer
	publicURL string
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, mailer Mailer, publicURL string) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtUtil:   jwtUtil,
		mailer:    mailer,
		publicURL: publicURL,
	}
}

// signupRules is the declarative rule set for new accounts.
func signupRules(req model.SignupRequest) validate.RuleSet {
	return validate.RuleSet{
		{Field: "name", Rules: []validate.Rule{
			validate.NotEmpty(),
			validate.MinLength(3, "name must be at least 3 characters"),
			validate.LettersOnly("name can only contain letters"),
		}},
		{Field: "email", Rules: []validate.Rule{
			validate.Email("invalid email"),
		}},
		{Field: "password", Rules: []validate.Rule{
			validate.MinLength(8, "password must be at least 8 characters"),
		}},
		{Field: "passwordConfirm", Rules: []validate.Rule{
			validate.Equals(req.Password, "passwords are not the same"),
		}},
	}
}

// passwordRules validates a new password.
func passwordRules() validate.RuleSet {
	return validate.RuleSet{
		{Field: "password", Rules: []validate.Rule{
			validate.MinLength(8, "password must be at least 8 characters"),
		}},
	}
}

func validationError(failures []string) error {
	return apperror.New(apperror.CodeValidation, strings.Join(failures, ". "))
}

// Signup creates a new user account and logs it in
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if failures := signupRules(req).Evaluate(map[string]string{
		"name":            req.Name,
		"email":           req.Email,
		"password":        req.Password,
		"passwordConfirm": req.PasswordConfirm,
	}); len(failures) > 0 {
		return nil, "", validationError(failures)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Photo:        "default.jpg",
		Role:         model.RoleUser,
		PasswordHash: hashedPassword,
		Active:       true,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	if err := s.mailer.SendWelcome(ctx, user, s.publicURL+"/me"); err != nil {
		// The account exists either way; the welcome mail is best-effort.
		log.Printf("WARN: failed to send welcome email to %s: %v", user.Email, err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		log.Printf("ERROR: User %s (ID: %d) created, but failed to generate token: %v", user.Email, user.ID, err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials // User not found
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials // Password mismatch
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// ForgotPassword issues a reset token and mails it to the user. If the
// mail cannot be delivered, the stored token is rolled back so a stale
// secret never lingers in the database.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	plainToken, hashedToken, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashedToken, expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", s.publicURL, plainToken)
	if err := s.mailer.SendPasswordReset(ctx, user, resetURL); err != nil {
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Printf("ERROR: failed to roll back reset token for user %d: %v", user.ID, clearErr)
		}
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *authService) ResetPassword(ctx context.Context, plainToken, password, passwordConfirm string) (*model.User, string, error) {
	hashedToken := utils.HashResetToken(plainToken)

	user, err := s.userRepo.FindByResetToken(ctx, hashedToken)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by reset token: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidResetToken
	}

	if failures := passwordRules().Evaluate(map[string]string{"password": password}); len(failures) > 0 {
		return nil, "", validationError(failures)
	}
	if password != passwordConfirm {
		return nil, "", validationError([]string{"passwords are not the same"})
	}

	if err := s.applyPasswordChange(ctx, user, password); err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// UpdatePassword changes the password of a logged-in user, requiring
// proof of the current one
func (s *authService) UpdatePassword(ctx context.Context, userID int, currentPassword, newPassword string) (*model.User, string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by ID: %w", err)
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return nil, "", ErrWrongPassword
	}

	if failures := passwordRules().Evaluate(map[string]string{"password": newPassword}); len(failures) > 0 {
		return nil, "", validationError(failures)
	}

	if err := s.applyPasswordChange(ctx, user, newPassword); err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// applyPasswordChange hashes and stores the new password. The change
// timestamp is backdated one second so a token issued in the same instant
// is not wrongly treated as stale.
func (s *authService) applyPasswordChange(ctx context.Context, user *model.User, newPassword string) error {
	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := time.Now().Add(-1 * time.Second)
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword, changedAt); err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.PasswordChangedAt = &changedAt
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/infrastructure/google"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
	"github.com/go-accounts-api/internal/infrastructure/smtp"
	"github.com/go-accounts-api/internal/pkg/gravatar"
	"github.com/go-accounts-api/internal/pkg/id"
	pkgtoken "github.com/go-accounts-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Profile is the projection of the authenticated user returned by Current.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	VerifyEmail(ctx context.Context, code string) error
	ResendVerifyEmail(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, userID string) error
	Current(u *domain.User) Profile
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	UpdateAvatar(ctx context.Context, userID, filename string, file io.Reader) (string, error)
	GoogleAuthURL() string
	LoginWithGoogle(ctx context.Context, code string) (string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByVerificationCode(ctx context.Context, code string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ConsumeVerificationCode(ctx context.Context, userID, code string) error
}

type tokenIssuer interface {
	SignSession(userID string) (string, error)
	SignReset(userID, email string) (string, error)
	VerifyReset(token string) (*jwtinfra.ResetClaims, error)
}

type googleClient interface {
	AuthURL() string
	ExchangeCode(ctx context.Context, code string) (*google.Payload, error)
}

type emailTemplates interface {
	ResetPassword(data smtp.ResetPasswordData) (string, error)
}

type avatarStorage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

type service struct {
	repo      userStore
	mailer    smtp.Mailer
	templates emailTemplates
	tokens    tokenIssuer
	google    googleClient
	avatars   avatarStorage
	baseURL   string
}

type ServiceDeps struct {
	UserRepo  userStore
	Mailer    smtp.Mailer
	Templates emailTemplates
	Tokens    tokenIssuer
	Google    googleClient
	Avatars   avatarStorage
	BaseURL   string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.UserRepo,
		mailer:    deps.Mailer,
		templates: deps.Templates,
		tokens:    deps.Tokens,
		google:    deps.Google,
		avatars:   deps.Avatars,
		baseURL:   deps.BaseURL,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email is already in use: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	code, err := pkgtoken.NewOpaque()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:           id.New(),
		Email:            req.Email,
		Name:             req.Name,
		PasswordHash:     string(hash),
		Verified:         false,
		VerificationCode: code,
		AvatarURL:        gravatar.URL(req.Email),
		AuthProvider:     domain.ProviderLocal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	// The user record stays even if the send fails; resend covers delivery gaps.
	if err := s.sendVerifyEmail(u.Email, code); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) sendVerifyEmail(email, code string) error {
	link := fmt.Sprintf("%s/api/auth/verify/%s", s.baseURL, code)
	html := fmt.Sprintf(`<a target="_blank" href="%s">Click to verify your email</a>`, link)
	return s.mailer.SendEmail(email, "Please verify your email", html)
}

func (s *service) VerifyEmail(ctx context.Context, code string) error {
	u, err := s.repo.GetByVerificationCode(ctx, code)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	// Conditional update: a second request racing on the same code loses.
	return s.repo.ConsumeVerificationCode(ctx, u.UserID, code)
}

func (s *service) ResendVerifyEmail(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if u.Verified {
		return fmt.Errorf("email is already verified: %w", domain.ErrAlreadyVerified)
	}
	// The stored code is reused; it is not rotated on resend.
	return s.sendVerifyEmail(email, u.VerificationCode)
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Same kind as a wrong password so callers can't probe registered emails.
		return "", fmt.Errorf("email or password is invalid: %w", domain.ErrInvalidCredentials)
	}
	if !u.Verified {
		return "", fmt.Errorf("email is not verified: %w", domain.ErrEmailNotVerified)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("email or password is invalid: %w", domain.ErrInvalidCredentials)
	}
	token, err := s.tokens.SignSession(u.UserID)
	if err != nil {
		return "", err
	}
	if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{"session_token": token}); err != nil {
		return "", err
	}
	return token, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	return s.repo.Update(ctx, userID, map[string]interface{}{"session_token": ""})
}

func (s *service) Current(u *domain.User) Profile {
	return Profile{Name: u.Name, Email: u.Email}
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	resetToken, err := s.tokens.SignReset(u.UserID, email)
	if err != nil {
		return err
	}
	html, err := s.templates.ResetPassword(smtp.ResetPasswordData{
		Name: u.Name,
		Link: fmt.Sprintf("%s/api/auth/reset-password/%s", s.baseURL, resetToken),
	})
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(email, "Password Reset Request", html)
}

func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return err
	}
	u, err := s.repo.Get(ctx, claims.Subject)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// The reset token stays valid until expiry and the active session token
	// is left untouched.
	return s.repo.Update(ctx, u.UserID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *service) UpdateAvatar(ctx context.Context, userID, filename string, file io.Reader) (string, error) {
	stored := fmt.Sprintf("%s_%s", userID, filepath.Base(filename))
	avatarURL, err := s.avatars.Save(ctx, stored, file)
	if err != nil {
		return "", err
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{"avatar_url": avatarURL}); err != nil {
		return "", err
	}
	return avatarURL, nil
}

func (s *service) GoogleAuthURL() string {
	return s.google.AuthURL()
}

func (s *service) LoginWithGoogle(ctx context.Context, code string) (string, error) {
	payload, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}
	u, err := s.repo.GetByEmail(ctx, payload.Email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.provisionGoogleUser(ctx, payload)
		if err != nil {
			return "", err
		}
	default:
		return "", err
	}
	token, err := s.tokens.SignSession(u.UserID)
	if err != nil {
		return "", err
	}
	if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{"session_token": token}); err != nil {
		return "", err
	}
	return token, nil
}

// provisionGoogleUser creates a verified account for a first-time federated
// login. The password hash is derived from a random token nobody knows, so
// the account cannot be entered through the credential path.
func (s *service) provisionGoogleUser(ctx context.Context, payload *google.Payload) (*domain.User, error) {
	random, err := pkgtoken.NewOpaque()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(random), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        payload.Email,
		Name:         payload.FullName(),
		PasswordHash: string(hash),
		Verified:     true,
		AvatarURL:    gravatar.URL(payload.Email),
		AuthProvider: domain.ProviderGoogle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

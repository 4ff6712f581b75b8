package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/utils"
	"github.com/example/gemmarket/internal/validation"
)

// Session is what sign-up and sign-in return.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AuthService is the email and password session provider.
type AuthService struct {
	users  *repository.UserRepository
	points *PointsService
	cache  *cache.Cache
	secret string
	ttl    time.Duration
	log    *zap.Logger
}

// NewAuthService constructs AuthService. points may be nil, in which case
// no registration bonus is granted.
func NewAuthService(users *repository.UserRepository, points *PointsService, c *cache.Cache, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{users: users, points: points, cache: c, secret: secret, ttl: ttl, log: log}
}

// SignUpEmail registers an account and opens a session for it.
func (s *AuthService) SignUpEmail(ctx context.Context, payload validation.SignUpPayload) (*Session, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		Username:     payload.Username,
		Phone:        payload.Phone,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Address:      strings.TrimSpace(payload.Address),
		City:         strings.TrimSpace(payload.City),
	}

	if s.points != nil {
		bonus, err := s.points.RegistrationBonus(ctx)
		if err != nil {
			s.log.Warn("registration bonus unavailable", zap.Error(err))
		} else if bonus.Points > 0 {
			user.Points = bonus.Points
			user.PointsExpiresAt = bonus.ExpiresAt
		}
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagUsers, "")

	return s.issue(&user)
}

// SignInEmail checks credentials and opens a session.
func (s *AuthService) SignInEmail(ctx context.Context, payload validation.SignInPayload) (*Session, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, payload.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Session resolves a token to its user.
func (s *AuthService) Session(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	id, err := utils.ParseToken(s.secret, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates an administrator account, or promotes and resets the
// password of an existing account with the same email.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	payload := validation.SignUpPayload{Name: name, Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user, err := s.users.Update(ctx, existing.ID, map[string]any{
			"role":          models.RoleAdmin,
			"password_hash": hash,
		})
		if err != nil {
			return nil, err
		}
		s.cache.Invalidate(ctx, cache.TagUsers, user.ID.String())
		return user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagUsers, "")
	return &user, nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := utils.GenerateToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// MobileAuthService maps Myanmar phone numbers onto the email provider.
type MobileAuthService struct {
	auth *AuthService
	log  *zap.Logger
}

// NewMobileAuthService constructs MobileAuthService.
func NewMobileAuthService(auth *AuthService, log *zap.Logger) *MobileAuthService {
	return &MobileAuthService{auth: auth, log: log}
}

// Register creates a phone account. Any uniqueness collision is reported as
// ErrPhoneTaken.
func (s *MobileAuthService) Register(ctx context.Context, payload validation.MobileRegisterPayload) (*Session, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	phone, ok := utils.NormalizeMyanmarPhone(payload.Phone)
	if !ok {
		return nil, ErrInvalidPhone
	}

	username := phone.Digits
	session, err := s.auth.SignUpEmail(ctx, validation.SignUpPayload{
		Name:     payload.Name,
		Email:    phone.Email(),
		Password: payload.Password,
		Username: &username,
		Phone:    &phone.E164,
		Address:  payload.Address,
		City:     payload.City,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrPhoneTaken
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("mobile account registered", zap.String("user_id", session.User.ID.String()))
	return session, nil
}

// Login signs in with a phone number. Every failure, including a malformed
// number, is ErrInvalidCredentials.
func (s *MobileAuthService) Login(ctx context.Context, payload validation.MobileLoginPayload) (*Session, error) {
	if err := payload.Validate(); err != nil {
		return nil, ErrInvalidCredentials
	}
	phone, ok := utils.NormalizeMyanmarPhone(payload.Phone)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	session, err := s.auth.SignInEmail(ctx, validation.SignInPayload{
		Email:    phone.Email(),
		Password: payload.Password,
	})
	if err != nil {
		var verr validation.Errors
		if errors.Is(err, ErrInvalidCredentials) || errors.As(err, &verr) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return session, nil
}

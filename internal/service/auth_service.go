package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/config"
	"jobdesk/api/internal/ids"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/repository"
	"jobdesk/api/internal/security"
)

// UserStore is the slice of the user repository the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user models.User, profile models.Profile) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	SetEmailVerified(ctx context.Context, id string) error
}

// VerificationStore holds short-lived email verification tokens.
type VerificationStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

// Mailer delivers outbound mail. Failures are logged, never returned to
// the registration caller.
type Mailer interface {
	SendVerificationEmail(to, token string) error
}

type AuthService struct {
	users         UserStore
	tokens        *security.TokenService
	verifications VerificationStore
	mailer        Mailer
	cfg           *config.AppConfig
	log           zerolog.Logger
}

func NewAuthService(
	users UserStore,
	tokens *security.TokenService,
	verifications VerificationStore,
	mailer Mailer,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        tokens,
		verifications: verifications,
		mailer:        mailer,
		cfg:           cfg,
		log:           log,
	}
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	Phone       string
	Designation string
	Agency      string
	Skills      []string
}

type AuthResult struct {
	User         models.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Name == "" {
		return AuthResult{}, apperrors.ValidationField("name", "name is required")
	}
	if input.Email == "" {
		return AuthResult{}, apperrors.ValidationField("email", "email is required")
	}
	if len(input.Password) < 6 {
		return AuthResult{}, apperrors.ValidationField("password", "password must be at least 6 characters")
	}

	role, ok := models.ParseRole(input.Role)
	if !ok {
		return AuthResult{}, apperrors.ValidationField("role", "role must be candidate, recruiter or admin")
	}

	switch role {
	case models.UserRoleCandidate, models.UserRoleAdmin:
		if input.Phone == "" {
			return AuthResult{}, apperrors.ValidationField("phone", "phone is required for "+string(role))
		}
	case models.UserRoleRecruiter:
		if input.Phone == "" || input.Designation == "" || input.Agency == "" {
			return AuthResult{}, apperrors.Validation("phone, designation and agency are required for recruiter")
		}
	}

	hash, err := security.HashPassword(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return AuthResult{}, apperrors.Internal("hash password", err)
	}

	user := models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
	}
	profile := models.Profile{
		ID:          ids.New(),
		UserID:      user.ID,
		Phone:       input.Phone,
		Designation: input.Designation,
		Agency:      input.Agency,
		Skills:      input.Skills,
	}

	if err := s.users.Create(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, apperrors.Conflict("email already registered")
		}
		return AuthResult{}, err
	}

	s.sendVerification(ctx, user)

	return s.issueTokens(user)
}

// sendVerification is fire-and-forget: a mail outage must not block
// registration.
func (s *AuthService) sendVerification(ctx context.Context, user models.User) {
	token := ids.New()
	if err := s.verifications.Save(ctx, token, user.ID, 24*time.Hour); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("save verification token failed")
		return
	}

	go func() {
		if err := s.mailer.SendVerificationEmail(user.Email, token); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("verification email failed")
		}
	}()
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return AuthResult{}, apperrors.Validation("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperrors.Unauthorized("invalid email or password")
		}
		return AuthResult{}, err
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return AuthResult{}, apperrors.Unauthorized("invalid email or password")
	}

	if user.IsSuspended {
		return AuthResult{}, apperrors.Forbidden("account suspended")
	}

	return s.issueTokens(user)
}

// Refresh re-reads the user so role changes and suspensions take effect
// here; outstanding access tokens stay valid until their own expiry,
// bounding the latency at the access-token TTL.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return AuthResult{}, apperrors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperrors.Unauthorized("invalid or expired refresh token")
		}
		return AuthResult{}, err
	}

	if user.IsSuspended {
		return AuthResult{}, apperrors.Forbidden("account suspended")
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user models.User) (AuthResult, error) {
	access, err := s.tokens.SignAccess(user)
	if err != nil {
		return AuthResult{}, apperrors.Internal("issue access token", err)
	}
	refresh, err := s.tokens.SignRefresh(user.ID)
	if err != nil {
		return AuthResult{}, apperrors.Internal("issue refresh token", err)
	}
	return AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (models.User, models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, models.Profile{}, apperrors.NotFound("user not found")
		}
		return models.User{}, models.Profile{}, err
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, models.Profile{}, err
	}
	return user, profile, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.Validation("verification token is required")
	}

	userID, err := s.verifications.Consume(ctx, token)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired verification token")
	}

	if err := s.users.SetEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NotFound("user not found")
		}
		return err
	}
	return nil
}

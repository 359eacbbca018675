package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/config"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/security"
)

func newTestAuthService(users *fakeUserStore) (*AuthService, *security.TokenService) {
	tokens := security.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour)
	cfg := &config.AppConfig{
		Security: config.SecurityConfig{BcryptCost: security.MinBcryptCost},
	}
	svc := NewAuthService(users, tokens, newFakeVerificationStore(), &fakeMailer{}, cfg, zerolog.Nop())
	return svc, tokens
}

func candidateInput() RegisterInput {
	return RegisterInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "s3cret-pass",
		Role:     "candidate",
		Phone:    "0123456789",
	}
}

func TestRegisterCandidate(t *testing.T) {
	users := newFakeUserStore()
	svc, tokens := newTestAuthService(users)

	result, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, models.UserRoleCandidate, result.User.Role)

	identity, err := tokens.VerifyAccess(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, identity.Subject)
	assert.Equal(t, models.UserRoleCandidate, identity.Role)
}

func TestRegisterNormalizesEmailAndRole(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newTestAuthService(users)

	input := candidateInput()
	input.Email = "  Jane@Example.COM "
	input.Role = "CANDIDATE"

	result, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.Equal(t, models.UserRoleCandidate, result.User.Role)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newTestAuthService(users)

	_, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), candidateInput())
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(newFakeUserStore())

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.Name = " " }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }},
		{"unknown role", func(in *RegisterInput) { in.Role = "wizard" }},
		{"candidate without phone", func(in *RegisterInput) { in.Phone = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := candidateInput()
			tc.mutate(&input)
			_, err := svc.Register(context.Background(), input)
			assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
		})
	}
}

func TestRegisterRecruiterRequiresAgencyFields(t *testing.T) {
	svc, _ := newTestAuthService(newFakeUserStore())

	input := candidateInput()
	input.Role = "recruiter"
	input.Designation = ""
	input.Agency = ""

	_, err := svc.Register(context.Background(), input)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	input.Designation = "Hiring Manager"
	input.Agency = "Acme Talent"
	_, err = svc.Register(context.Background(), input)
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newTestAuthService(users)

	_, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "jane@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newTestAuthService(users)

	_, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)

	_, badPass := svc.Login(context.Background(), "jane@example.com", "wrong-pass")
	_, noUser := svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")

	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(badPass))
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(noUser))
	assert.Equal(t, badPass.Error(), noUser.Error())
}

func TestLoginSuspendedAccount(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newTestAuthService(users)

	result, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)
	require.NoError(t, users.SetSuspended(context.Background(), result.User.ID, true))

	_, err = svc.Login(context.Background(), "jane@example.com", "s3cret-pass")
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newTestAuthService(users)

	registered, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestAuthService(newFakeUserStore())

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func TestRefreshSeesSuspension(t *testing.T) {
	users := newFakeUserStore()
	svc, _ := newTestAuthService(users)

	registered, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)
	require.NoError(t, users.SetSuspended(context.Background(), registered.User.ID, true))

	_, err = svc.Refresh(context.Background(), registered.RefreshToken)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestVerifyEmailConsumesToken(t *testing.T) {
	users := newFakeUserStore()
	verifications := newFakeVerificationStore()
	tokens := security.NewTokenService("test-secret", 15*time.Minute, time.Hour)
	cfg := &config.AppConfig{Security: config.SecurityConfig{BcryptCost: security.MinBcryptCost}}
	svc := NewAuthService(users, tokens, verifications, &fakeMailer{}, cfg, zerolog.Nop())

	registered, err := svc.Register(context.Background(), candidateInput())
	require.NoError(t, err)

	// Register saved exactly one verification token.
	var token string
	for saved := range verifications.tokens {
		token = saved
	}
	require.NotEmpty(t, token)

	require.NoError(t, svc.VerifyEmail(context.Background(), token))

	user, err := users.GetByID(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)

	// Second use of the same token fails.
	err = svc.VerifyEmail(context.Background(), token)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

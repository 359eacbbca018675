package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/repository"
	"jobdesk/api/internal/security"
)

// AdminUserStore is the slice of the user repository admin management
// needs.
type AdminUserStore interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int, error)
	SetSuspended(ctx context.Context, id string, suspended bool) error
}

type UserService struct {
	users AdminUserStore
	log   zerolog.Logger
}

func NewUserService(users AdminUserStore, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) List(ctx context.Context, actor security.Identity, page, limit int) ([]models.User, Pagination, error) {
	if actor.Role != models.UserRoleAdmin {
		return nil, Pagination{}, apperrors.Forbidden("only admin can list users")
	}

	page, limit = clampPage(page, limit)
	users, total, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return users, newPagination(page, limit, total), nil
}

// SetSuspended flips account suspension. Outstanding access tokens stay
// valid until expiry; the ban lands on the user's next refresh.
func (s *UserService) SetSuspended(ctx context.Context, actor security.Identity, userID string, suspended bool) (models.User, error) {
	if actor.Role != models.UserRoleAdmin {
		return models.User{}, apperrors.Forbidden("only admin can suspend users")
	}
	if userID == actor.Subject {
		return models.User{}, apperrors.Validation("cannot suspend your own account")
	}

	if err := s.users.SetSuspended(ctx, userID, suspended); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperrors.NotFound("user not found")
		}
		return models.User{}, err
	}

	s.log.Info().Str("user_id", userID).Bool("suspended", suspended).Str("by", actor.Subject).Msg("user suspension updated")
	return s.users.GetByID(ctx, userID)
}

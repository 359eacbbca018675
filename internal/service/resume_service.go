package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/repository"
	"jobdesk/api/internal/security"
)

const maxResumeBytes = 5 << 20 // 5 MiB

// ResumeStore writes resume documents to object storage.
type ResumeStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// ProfileStore records where a candidate's resume lives.
type ProfileStore interface {
	SetResumeKey(ctx context.Context, userID, key string) error
}

type ResumeService struct {
	store    ResumeStore
	profiles ProfileStore
	log      zerolog.Logger
}

func NewResumeService(store ResumeStore, profiles ProfileStore, log zerolog.Logger) *ResumeService {
	return &ResumeService{store: store, profiles: profiles, log: log}
}

// Upload stores a PDF resume for the calling candidate. Only PDFs are
// accepted; the %PDF magic bytes are checked, not just the declared
// content type.
func (s *ResumeService) Upload(ctx context.Context, actor security.Identity, reader io.Reader, size int64, contentType string) (string, error) {
	if size <= 0 || size > maxResumeBytes {
		return "", apperrors.Validation("resume must be a PDF of at most 5 MB")
	}
	if contentType != "application/pdf" {
		return "", apperrors.Validation("resume must be a PDF")
	}

	head := make([]byte, 5)
	if _, err := io.ReadFull(reader, head); err != nil {
		return "", apperrors.Validation("resume must be a PDF")
	}
	if string(head) != "%PDF-" {
		return "", apperrors.Validation("resume must be a PDF")
	}

	key := fmt.Sprintf("resumes/%s.pdf", actor.Subject)
	body := io.MultiReader(bytes.NewReader(head), reader)

	if err := s.store.Put(ctx, key, body, size, contentType); err != nil {
		return "", apperrors.Internal("store resume", err)
	}

	if err := s.profiles.SetResumeKey(ctx, actor.Subject, key); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperrors.NotFound("profile not found")
		}
		return "", err
	}

	s.log.Info().Str("user_id", actor.Subject).Str("key", key).Msg("resume uploaded")
	return key, nil
}

package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/models"
)

type fakeResumeStore struct {
	objects map[string][]byte
}

func (s *fakeResumeStore) Put(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = data
	return nil
}

func TestUploadResume(t *testing.T) {
	users := newFakeUserStore()
	seedUsers(t, users, models.User{ID: "candidate-1", Email: "a@example.com", Role: models.UserRoleCandidate})
	store := &fakeResumeStore{}
	svc := NewResumeService(store, users, zerolog.Nop())

	pdf := []byte("%PDF-1.7 fake document body")
	key, err := svc.Upload(context.Background(), candidateActor, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "resumes/candidate-1.pdf", key)

	// The magic-byte probe must not truncate the stored object.
	assert.Equal(t, pdf, store.objects[key])

	profile, err := users.GetProfile(context.Background(), "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, key, profile.ResumeKey)
}

func TestUploadResumeRejectsNonPDF(t *testing.T) {
	users := newFakeUserStore()
	seedUsers(t, users, models.User{ID: "candidate-1", Email: "a@example.com", Role: models.UserRoleCandidate})
	svc := NewResumeService(&fakeResumeStore{}, users, zerolog.Nop())

	body := []byte("%PDF-1.7 content")

	_, err := svc.Upload(context.Background(), candidateActor, bytes.NewReader(body), int64(len(body)), "image/png")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	notPDF := []byte("PK\x03\x04 zip content pretending")
	_, err = svc.Upload(context.Background(), candidateActor, bytes.NewReader(notPDF), int64(len(notPDF)), "application/pdf")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = svc.Upload(context.Background(), candidateActor, bytes.NewReader(nil), 0, "application/pdf")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = svc.Upload(context.Background(), candidateActor, bytes.NewReader(body), 6<<20, "application/pdf")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

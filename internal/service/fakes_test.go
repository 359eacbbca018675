package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"jobdesk/api/internal/cache"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/repository"
)

// In-memory store fakes. They honor the same sentinel errors as the
// real repositories so the services under test see identical behavior.

type fakeUserStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	profiles map[string]models.Profile
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[string]models.User),
		profiles: make(map[string]models.Profile),
	}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetProfile(_ context.Context, userID string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, repository.ErrUserNotFound
	}
	return profile, nil
}

func (s *fakeUserStore) SetEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsEmailVerified = true
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) SetSuspended(_ context.Context, id string, suspended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsSuspended = suspended
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) List(_ context.Context, limit, offset int) ([]models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		all = append(all, user)
	}
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *fakeUserStore) SetResumeKey(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	profile.ResumeKey = key
	s.profiles[userID] = profile
	return nil
}

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]models.Job
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]models.Job)}
}

func (s *fakeJobStore) Create(_ context.Context, job models.Job) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	job.Status = models.JobStatusPending
	job.IsApproved = false
	job.CreatedAt = now
	job.UpdatedAt = now
	job.StatusHistory = []models.StatusChange{{
		Status:    models.JobStatusPending,
		ChangedBy: job.CreatedBy,
		ChangedAt: now,
		Reason:    "job created",
	}}
	s.jobs[job.ID] = job
	return job, nil
}

func (s *fakeJobStore) GetByID(_ context.Context, id string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, repository.ErrJobNotFound
	}
	return job, nil
}

// Transition mirrors the conditional-update semantics of the real
// repository: it applies only while the job is still in Expected.
func (s *fakeJobStore) Transition(_ context.Context, p repository.TransitionParams) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[p.JobID]
	if !ok {
		return models.Job{}, repository.ErrJobNotFound
	}
	if job.Status != p.Expected {
		return models.Job{}, repository.ErrStatusConflict
	}

	now := time.Now()
	job.Status = p.Next
	job.UpdatedAt = now
	switch p.Next {
	case models.JobStatusApproved:
		job.IsApproved = true
		job.RejectionReason = ""
		job.ApprovedBy = &p.ActorID
		job.ApprovedAt = &now
	case models.JobStatusRejected:
		job.IsApproved = false
		job.RejectionReason = p.Reason
		job.RejectedBy = &p.ActorID
		job.RejectedAt = &now
	case models.JobStatusClosed:
		job.ClosedBy = &p.ActorID
		job.ClosedAt = &now
	}
	job.StatusHistory = append(job.StatusHistory, models.StatusChange{
		Status:    p.Next,
		ChangedBy: p.ActorID,
		ChangedAt: now,
		Reason:    p.Reason,
	})
	s.jobs[p.JobID] = job
	return job, nil
}

func (s *fakeJobStore) UpdateFields(_ context.Context, job models.Job) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.jobs[job.ID]
	if !ok {
		return models.Job{}, repository.ErrJobNotFound
	}
	existing.Title = job.Title
	existing.Description = job.Description
	existing.Requirements = job.Requirements
	existing.Location = job.Location
	existing.JobType = job.JobType
	existing.Salary = job.Salary
	existing.ExperienceLevel = job.ExperienceLevel
	existing.Skills = job.Skills
	existing.UpdatedAt = time.Now()
	s.jobs[job.ID] = existing
	return existing, nil
}

func (s *fakeJobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return repository.ErrJobNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *fakeJobStore) List(_ context.Context, f repository.JobFilter) ([]models.Job, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, job.Status) {
			continue
		}
		if f.ApprovedOnly && !job.IsApproved {
			continue
		}
		if f.CreatedBy != "" && job.CreatedBy != f.CreatedBy {
			continue
		}
		if f.Search != "" && !jobMatchesSearch(job, f.Search) {
			continue
		}
		matches = append(matches, job)
	}

	total := len(matches)
	if f.Offset > len(matches) {
		return nil, total, nil
	}
	matches = matches[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matches) {
		matches = matches[:f.Limit]
	}
	return matches, total, nil
}

// jobMatchesSearch mirrors the text-search contract of the real store:
// title, description, requirements and skills are searchable.
func jobMatchesSearch(job models.Job, term string) bool {
	term = strings.ToLower(term)
	fields := []string{job.Title, job.Description}
	fields = append(fields, job.Requirements...)
	fields = append(fields, job.Skills...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.JobStatus, status models.JobStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeApplicationStore struct {
	mu   sync.Mutex
	apps map[string]models.Application
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{apps: make(map[string]models.Application)}
}

func (s *fakeApplicationStore) Create(_ context.Context, app models.Application) (models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apps {
		if existing.CandidateID == app.CandidateID && existing.JobID == app.JobID {
			return models.Application{}, repository.ErrDuplicateApplication
		}
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	s.apps[app.ID] = app
	return app, nil
}

func (s *fakeApplicationStore) GetByID(_ context.Context, id string) (models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return models.Application{}, repository.ErrApplicationNotFound
	}
	return app, nil
}

func (s *fakeApplicationStore) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus) (models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return models.Application{}, repository.ErrApplicationNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now()
	s.apps[id] = app
	return app, nil
}

func (s *fakeApplicationStore) ListByCandidate(_ context.Context, candidateID string, limit, offset int) ([]models.Application, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]models.Application, 0)
	for _, app := range s.apps {
		if app.CandidateID == candidateID {
			matches = append(matches, app)
		}
	}
	return pageApps(matches, limit, offset)
}

func (s *fakeApplicationStore) ListByJob(_ context.Context, jobID string, limit, offset int) ([]models.Application, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]models.Application, 0)
	for _, app := range s.apps {
		if app.JobID == jobID {
			matches = append(matches, app)
		}
	}
	return pageApps(matches, limit, offset)
}

func pageApps(apps []models.Application, limit, offset int) ([]models.Application, int, error) {
	total := len(apps)
	if offset > len(apps) {
		return nil, total, nil
	}
	apps = apps[offset:]
	if limit > 0 && limit < len(apps) {
		apps = apps[:limit]
	}
	return apps, total, nil
}

type fakeVerificationStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{tokens: make(map[string]string)}
}

func (s *fakeVerificationStore) Save(_ context.Context, token, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *fakeVerificationStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return "", cache.ErrTokenNotFound
	}
	delete(s.tokens, token)
	return userID, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendVerificationEmail(to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

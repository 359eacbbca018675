package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobdesk/api/internal/apperrors"
	"jobdesk/api/internal/models"
	"jobdesk/api/internal/security"
)

func newTestApplicationService(t *testing.T) (*ApplicationService, *JobService) {
	t.Helper()
	jobStore := newFakeJobStore()
	jobSvc := NewJobService(jobStore, nil, zerolog.Nop())
	appSvc := NewApplicationService(newFakeApplicationStore(), jobStore, zerolog.Nop())
	return appSvc, jobSvc
}

func applicationFixture(t *testing.T, appSvc *ApplicationService, jobSvc *JobService) (models.Job, models.Application) {
	t.Helper()
	job := mustCreateJob(t, jobSvc, recruiterActor)
	app, err := appSvc.Apply(context.Background(), candidateActor, ApplyInput{JobID: job.ID})
	require.NoError(t, err)
	return job, app
}

func TestApplyCreatesApplication(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)

	_, app := applicationFixture(t, appSvc, jobSvc)
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)
	assert.Equal(t, candidateActor.Subject, app.CandidateID)
}

func TestApplyCandidatesOnly(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	job := mustCreateJob(t, jobSvc, recruiterActor)

	_, err := appSvc.Apply(context.Background(), recruiterActor, ApplyInput{JobID: job.ID})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestApplyMissingJob(t *testing.T) {
	appSvc, _ := newTestApplicationService(t)

	_, err := appSvc.Apply(context.Background(), candidateActor, ApplyInput{JobID: "no-such-job"})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestApplyTwiceConflicts(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	job, _ := applicationFixture(t, appSvc, jobSvc)

	_, err := appSvc.Apply(context.Background(), candidateActor, ApplyInput{JobID: job.ID})
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestUpdateStatusByJobOwner(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	_, app := applicationFixture(t, appSvc, jobSvc)

	updated, err := appSvc.UpdateStatus(context.Background(), recruiterActor, app.ID, "Shortlisted")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusShortlisted, updated.Status)
}

func TestUpdateStatusForbiddenForOtherRecruiter(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	_, app := applicationFixture(t, appSvc, jobSvc)

	_, err := appSvc.UpdateStatus(context.Background(), otherRecruiter, app.ID, "Reviewed")
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	_, app := applicationFixture(t, appSvc, jobSvc)

	_, err := appSvc.UpdateStatus(context.Background(), recruiterActor, app.ID, "Ghosted")
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestWithdrawOwnApplication(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	_, app := applicationFixture(t, appSvc, jobSvc)

	withdrawn, err := appSvc.Withdraw(context.Background(), candidateActor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, withdrawn.Status)
}

func TestWithdrawSomeoneElsesApplication(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	_, app := applicationFixture(t, appSvc, jobSvc)

	other := security.Identity{Subject: "candidate-2", Role: models.UserRoleCandidate}
	_, err := appSvc.Withdraw(context.Background(), other, app.ID)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestWithdrawAfterHire(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	_, app := applicationFixture(t, appSvc, jobSvc)

	_, err := appSvc.UpdateStatus(context.Background(), recruiterActor, app.ID, "Hired")
	require.NoError(t, err)

	// Withdraw has no terminal-state guard on purpose.
	withdrawn, err := appSvc.Withdraw(context.Background(), candidateActor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusWithdrawn, withdrawn.Status)
}

func TestListMineApplications(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	applicationFixture(t, appSvc, jobSvc)

	apps, pagination, err := appSvc.ListMine(context.Background(), candidateActor, 1, 10)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, pagination.Total)

	other := security.Identity{Subject: "candidate-2", Role: models.UserRoleCandidate}
	apps, _, err = appSvc.ListMine(context.Background(), other, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestListByJobOwnerOrAdmin(t *testing.T) {
	appSvc, jobSvc := newTestApplicationService(t)
	job, _ := applicationFixture(t, appSvc, jobSvc)

	apps, _, err := appSvc.ListByJob(context.Background(), recruiterActor, job.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	_, _, err = appSvc.ListByJob(context.Background(), adminActor, job.ID, 1, 10)
	assert.NoError(t, err)

	_, _, err = appSvc.ListByJob(context.Background(), otherRecruiter, job.ID, 1, 10)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

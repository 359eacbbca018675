package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for raw, want := range map[string]UserRole{
		"candidate": UserRoleCandidate,
		"Recruiter": UserRoleRecruiter,
		" ADMIN ":   UserRoleAdmin,
	} {
		role, ok := ParseRole(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, role)
	}

	_, ok := ParseRole("superuser")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.Terminal())
	assert.False(t, JobStatusApproved.Terminal())
	assert.True(t, JobStatusRejected.Terminal())
	assert.True(t, JobStatusClosed.Terminal())
}

func TestValidApplicationStatus(t *testing.T) {
	assert.True(t, ValidApplicationStatus("Applied"))
	assert.True(t, ValidApplicationStatus("Withdrawn"))
	assert.False(t, ValidApplicationStatus("applied")) // statuses are case-sensitive
	assert.False(t, ValidApplicationStatus("Ghosted"))
}

func TestJobEnums(t *testing.T) {
	assert.True(t, ValidJobType("full-time"))
	assert.False(t, ValidJobType("gig"))
	assert.True(t, ValidExperienceLevel("mid-level"))
	assert.False(t, ValidExperienceLevel("guru"))
}

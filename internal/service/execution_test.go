package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
)

func TestStartRequiresApprovedStatus(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)

	err := env.exec.Start(context.Background(), p.ID, env.proposer.UserID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))
}

func TestStartAuthorizationBeforeState(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)

	// wrong state AND wrong caller: the caller check answers first
	err := env.exec.Start(context.Background(), p.ID, env.finance.UserID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestStartByOwnerAndByAdministrator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.approvedProject(t)
	require.NoError(t, env.exec.Start(ctx, p.ID, env.proposer.UserID))
	got, err := env.st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	require.NotNil(t, got.StartDate)

	p2 := env.approvedProject(t)
	require.NoError(t, env.exec.Start(ctx, p2.ID, env.admin.UserID))
}

func TestCompleteLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.approvedProject(t)
	err := env.exec.Complete(ctx, p.ID, env.proposer.UserID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	require.NoError(t, env.exec.Start(ctx, p.ID, env.proposer.UserID))
	require.NoError(t, env.exec.Complete(ctx, p.ID, env.proposer.UserID))

	got, err := env.st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.EndDate)

	// completed is terminal
	err = env.exec.Start(ctx, p.ID, env.proposer.UserID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))
}

func TestMilestonesDriveProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.inProgressProject(t)

	due := time.Now().AddDate(0, 1, 0)
	m1, err := env.exec.AddMilestone(ctx, p.ID, MilestoneInput{Name: "design", DueDate: due})
	require.NoError(t, err)
	m2, err := env.exec.AddMilestone(ctx, p.ID, MilestoneInput{Name: "build", DueDate: due})
	require.NoError(t, err)

	got, err := env.st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)

	require.NoError(t, env.exec.UpdateMilestoneStatus(ctx, p.ID, m1.ID, model.MilestoneCompleted))
	got, err = env.st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)

	// a new milestone dilutes the ratio
	_, err = env.exec.AddMilestone(ctx, p.ID, MilestoneInput{Name: "rollout", DueDate: due})
	require.NoError(t, err)
	got, err = env.st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, got.Progress)

	require.NoError(t, env.exec.UpdateMilestoneStatus(ctx, p.ID, m2.ID, model.MilestoneCompleted))
	got, err = env.st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, got.Progress)
}

func TestMilestoneReopenClearsCompletionDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.inProgressProject(t)

	m, err := env.exec.AddMilestone(ctx, p.ID, MilestoneInput{Name: "design", DueDate: time.Now()})
	require.NoError(t, err)

	require.NoError(t, env.exec.UpdateMilestoneStatus(ctx, p.ID, m.ID, model.MilestoneCompleted))
	require.NoError(t, env.exec.UpdateMilestoneStatus(ctx, p.ID, m.ID, model.MilestoneInProgress))

	g, err := env.st.GetProjectGraph(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, g.Milestones, 1)
	assert.Equal(t, model.MilestoneInProgress, g.Milestones[0].Status)
	assert.Nil(t, g.Milestones[0].CompletionDate)
	assert.Equal(t, 0, g.Project.Progress)
}

func TestMilestoneValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.inProgressProject(t)

	_, err := env.exec.AddMilestone(ctx, p.ID, MilestoneInput{Name: "", DueDate: time.Now()})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	_, err = env.exec.AddMilestone(ctx, p.ID, MilestoneInput{Name: "design"})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	m, err := env.exec.AddMilestone(ctx, p.ID, MilestoneInput{Name: "design", DueDate: time.Now()})
	require.NoError(t, err)
	err = env.exec.UpdateMilestoneStatus(ctx, p.ID, m.ID, model.MilestoneStatus("done"))
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	err = env.exec.UpdateMilestoneStatus(ctx, p.ID, 99999, model.MilestoneCompleted)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestIssueLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.inProgressProject(t)

	_, err := env.exec.ReportIssue(ctx, p.ID, "  ", env.finance)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	iss, err := env.exec.ReportIssue(ctx, p.ID, "vendor delivery slipped", env.finance)
	require.NoError(t, err)
	assert.Equal(t, model.IssueOpen, iss.Status)
	assert.Equal(t, env.finance.Name, iss.ReportedBy)

	// resolving without text is an invalid transition, not bad input
	err = env.exec.ResolveIssue(ctx, p.ID, iss.ID, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	require.NoError(t, env.exec.ResolveIssue(ctx, p.ID, iss.ID, "renegotiated the date"))

	g, err := env.st.GetProjectGraph(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, g.Issues, 1)
	assert.Equal(t, model.IssueResolved, g.Issues[0].Status)
	assert.NotNil(t, g.Issues[0].ResolvedAt)

	err = env.exec.ResolveIssue(ctx, p.ID, iss.ID, "again")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))
}

func TestPostUpdateAppends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.inProgressProject(t)

	_, err := env.exec.PostUpdate(ctx, p.ID, "", env.proposer)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	u1, err := env.exec.PostUpdate(ctx, p.ID, "kickoff done", env.proposer)
	require.NoError(t, err)
	u2, err := env.exec.PostUpdate(ctx, p.ID, "first sprint complete", env.admin)
	require.NoError(t, err)
	assert.NotEqual(t, u1.ID, u2.ID)

	g, err := env.st.GetProjectGraph(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, g.Updates, 2)
	assert.Equal(t, env.proposer.Name, g.Updates[0].Author)
}

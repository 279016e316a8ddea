package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
)

func TestResolveProfileProvisionsDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := &model.User{Email: "newcomer@example.com", PasswordHash: "x"}
	require.NoError(t, env.st.CreateUser(ctx, u))

	p, err := env.directory.ResolveProfile(ctx, u.ID, u.Email)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProposer, p.Role)
	assert.Equal(t, "IT Department", p.Department)
	assert.Equal(t, "newcomer", p.Name)

	// second resolution returns the same row, not a second default
	again, err := env.directory.ResolveProfile(ctx, u.ID, u.Email)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestResolveProfileKeepsExisting(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.directory.ResolveProfile(context.Background(), env.finance.UserID, env.finance.Email)
	require.NoError(t, err)
	assert.Equal(t, model.RoleFinance, p.Role)
	assert.Equal(t, "Finance", p.Department)
}

func TestListVisibleProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mine := env.submit(t)
	other := addUser(t, env.st, "oscar", "oscar@example.com", model.RoleProposer, "Marketing")
	theirs, err := env.sub.Submit(ctx, other, SubmitInput{Title: "Brand refresh", Budget: 500})
	require.NoError(t, err)

	own, err := env.directory.ListVisibleProjects(ctx, env.proposer)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := env.directory.ListVisibleProjects(ctx, env.director)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	adminAll, err := env.directory.ListVisibleProjects(ctx, env.admin)
	require.NoError(t, err)
	assert.Len(t, adminAll, 2)

	// reviewers see everything they hold a slot on, here both submissions
	assigned, err := env.directory.ListVisibleProjects(ctx, env.finance)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)
	_ = theirs
}

func TestProjectDetailVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.submit(t)

	g, err := env.directory.ProjectDetail(ctx, env.finance, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, g.Project.ID)
	require.NotNil(t, g.Submitter)
	assert.Equal(t, env.proposer.UserID, g.Submitter.UserID)

	stranger := addUser(t, env.st, "oscar", "oscar@example.com", model.RoleProposer, "Marketing")
	_, err = env.directory.ProjectDetail(ctx, stranger, p.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	_, err = env.directory.ProjectDetail(ctx, env.director, 99999)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

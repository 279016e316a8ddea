package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
)

func TestDecideRequiresDirectorRole(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)
	env.approveAll(t, p.ID)

	err := env.dir.Decide(context.Background(), p.ID, env.proposer.UserID, model.StatusApproved, "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	err = env.dir.Decide(context.Background(), p.ID, env.admin.UserID, model.StatusApproved, "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestDecideAcceptsOnlyApproveOrReject(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)
	env.approveAll(t, p.ID)

	err := env.dir.Decide(context.Background(), p.ID, env.director.UserID, model.StatusCompleted, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestDecideApprove(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)
	env.approveAll(t, p.ID)
	ctx := context.Background()

	require.NoError(t, env.dir.Decide(ctx, p.ID, env.director.UserID, model.StatusApproved, "funded for Q3"))

	got, err := env.st.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, "funded for Q3", got.DirectorComment)
	require.NotNil(t, got.DirectorID)
	assert.Equal(t, env.director.UserID, *got.DirectorID)
}

func TestDecideOnlyWhileAwaitingDirection(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)
	ctx := context.Background()

	// still under departmental review
	err := env.dir.Decide(ctx, p.ID, env.director.UserID, model.StatusApproved, "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	env.approveAll(t, p.ID)
	require.NoError(t, env.dir.Decide(ctx, p.ID, env.director.UserID, model.StatusRejected, "no budget"))

	// a decided project cannot be re-decided
	err = env.dir.Decide(ctx, p.ID, env.director.UserID, model.StatusApproved, "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))
}

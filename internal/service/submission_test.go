package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
)

func TestSubmitCreatesSlotsAndRiskRegister(t *testing.T) {
	env := newTestEnv(t)
	p := env.submit(t)

	assert.Equal(t, model.StatusPendingReview, p.Status)
	assert.Equal(t, 0, p.Progress)
	require.NotZero(t, p.ID)

	g, err := env.st.GetProjectGraph(context.Background(), p.ID)
	require.NoError(t, err)

	require.Len(t, g.Reviewers, 3)
	departments := map[string]bool{}
	for _, slot := range g.Reviewers {
		assert.Equal(t, model.ReviewPending, slot.Status)
		departments[slot.Department] = true
	}
	assert.Equal(t, map[string]bool{"Finance": true, "Legal": true, "Operations": true}, departments)

	require.Len(t, g.Risks, 4)
	for _, e := range g.Risks {
		assert.Equal(t, model.RiskNotAssessed, e.Risk)
	}

	submitted := env.eventsWithKey(EventProjectSubmitted)
	require.Len(t, submitted, 1)
	payload := submitted[0].Payload.(ProjectSubmittedEvent)
	assert.Equal(t, env.proposer.UserID, payload.SubmitterID)
	assert.Equal(t, 3, payload.Reviewers)
}

func TestSubmitWaivesDepartmentWithoutReviewer(t *testing.T) {
	st := store.NewMemStore()
	sub := NewSubmissionService(st, false, zap.NewNop())
	proposer := addUser(t, st, "paula", "paula@example.com", model.RoleProposer, "IT Department")
	addUser(t, st, "frank", "frank@example.com", model.RoleFinance, "Finance")
	addUser(t, st, "omar", "omar@example.com", model.RoleOperations, "Operations")
	// nobody in Legal

	p, err := sub.Submit(context.Background(), proposer, SubmitInput{Title: "No legal dept", Budget: 100})
	require.NoError(t, err)

	g, err := st.GetProjectGraph(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, g.Reviewers, 2)
	for _, slot := range g.Reviewers {
		assert.NotEqual(t, "Legal", slot.Department)
	}
}

func TestSubmitStrictAssignmentFailsWithoutReviewer(t *testing.T) {
	st := store.NewMemStore()
	sub := NewSubmissionService(st, true, zap.NewNop())
	proposer := addUser(t, st, "paula", "paula@example.com", model.RoleProposer, "IT Department")
	addUser(t, st, "frank", "frank@example.com", model.RoleFinance, "Finance")

	_, err := sub.Submit(context.Background(), proposer, SubmitInput{Title: "Strict", Budget: 100})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sub.Submit(context.Background(), env.proposer, SubmitInput{Title: "   ", Budget: 10})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	_, err = env.sub.Submit(context.Background(), env.proposer, SubmitInput{Title: "ok", Budget: -1})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

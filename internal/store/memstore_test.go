package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
)

func seedProject(t *testing.T, s *MemStore) *model.Project {
	t.Helper()
	p := &model.Project{Title: "t", Status: model.StatusPendingReview, SubmitterID: 1}
	require.NoError(t, s.CreateProject(context.Background(), p, nil, nil, nil))
	return p
}

func TestWithProjectRollsBackOnError(t *testing.T) {
	s := NewMemStore()
	p := seedProject(t, s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithProject(ctx, p.ID, func(ctx context.Context, tx ProjectTx) error {
		proj := tx.Project()
		proj.Status = model.StatusApproved
		require.NoError(t, tx.SaveProject(ctx, proj))
		require.NoError(t, tx.AddUpdate(ctx, &model.Update{Text: "x"}))
		require.NoError(t, tx.AppendEvent(ctx, "project.status_changed", nil))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingReview, got.Status)
	assert.Equal(t, int64(0), got.Version)

	g, err := s.GetProjectGraph(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, g.Updates)
	assert.Empty(t, s.Events())
}

func TestWithProjectCommitsAndBumpsVersion(t *testing.T) {
	s := NewMemStore()
	p := seedProject(t, s)
	ctx := context.Background()

	err := s.WithProject(ctx, p.ID, func(ctx context.Context, tx ProjectTx) error {
		proj := tx.Project()
		proj.Status = model.StatusPendingDirector
		return tx.SaveProject(ctx, proj)
	})
	require.NoError(t, err)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingDirector, got.Status)
	assert.Equal(t, int64(1), got.Version)
}

// The record's mutex must survive a commit: repeated scopes on the same
// project, sequential or concurrent, all run to completion.
func TestWithProjectRepeatedScopesOnSameRecord(t *testing.T) {
	s := NewMemStore()
	p := seedProject(t, s)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.WithProject(ctx, p.ID, func(ctx context.Context, tx ProjectTx) error {
			return tx.AddUpdate(ctx, &model.Update{Text: "note"})
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithProject(ctx, p.ID, func(ctx context.Context, tx ProjectTx) error {
				return tx.AddUpdate(ctx, &model.Update{Text: "concurrent note"})
			})
		}()
	}
	wg.Wait()

	g, err := s.GetProjectGraph(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, g.Updates, 7)
}

func TestWithProjectUnknownProject(t *testing.T) {
	s := NewMemStore()
	err := s.WithProject(context.Background(), 42, func(context.Context, ProjectTx) error {
		t.Fatal("fn must not run for a missing project")
		return nil
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestCreateUserWithProfileIsAtomic(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	u := &model.User{Email: "paula@example.com", PasswordHash: "x"}
	p := model.UserProfile{Name: "paula", Email: u.Email, Role: model.RoleFinance, Department: "Finance"}
	require.NoError(t, s.CreateUserWithProfile(ctx, u, p))
	require.NotZero(t, u.ID)

	got, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleFinance, got.Role)

	// duplicate email: neither row is written
	dup := &model.User{Email: "paula@example.com", PasswordHash: "y"}
	err = s.CreateUserWithProfile(ctx, dup, p)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	assert.Zero(t, dup.ID)

	// profile slot already taken: the user insert must not survive
	s2 := NewMemStore()
	require.NoError(t, s2.CreateProfile(ctx, model.UserProfile{UserID: 1, Name: "squatter", Role: model.RoleProposer}))
	u2 := &model.User{Email: "omar@example.com", PasswordHash: "x"}
	err = s2.CreateUserWithProfile(ctx, u2, model.UserProfile{Name: "omar", Role: model.RoleOperations})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	_, err = s2.GetUserByEmail(ctx, "omar@example.com")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestEnsureProfileReturnsWinnerRow(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	first, err := s.EnsureProfile(ctx, model.UserProfile{UserID: 7, Name: "first", Role: model.RoleProposer})
	require.NoError(t, err)
	second, err := s.EnsureProfile(ctx, model.UserProfile{UserID: 7, Name: "second", Role: model.RoleDirector})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "first", second.Name)
}

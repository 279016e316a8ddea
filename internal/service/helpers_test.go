package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"approvalflow/internal/model"
	"approvalflow/internal/store"
)

// testEnv wires every service against one MemStore with a seeded org chart.
type testEnv struct {
	st *store.MemStore

	sub       *SubmissionService
	rev       *ReviewService
	dir       *DirectorService
	exec      *ExecutionService
	risk      *RiskService
	disc      *DiscussionService
	directory *DirectoryService

	proposer *model.UserProfile
	finance  *model.UserProfile
	legal    *model.UserProfile
	ops      *model.UserProfile
	director *model.UserProfile
	admin    *model.UserProfile
}

func addUser(t *testing.T, st *store.MemStore, name, email string, role model.Role, department string) *model.UserProfile {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, st.CreateUser(context.Background(), u))
	p := model.UserProfile{
		UserID:     u.ID,
		Name:       name,
		Email:      email,
		Role:       role,
		Department: department,
	}
	require.NoError(t, st.CreateProfile(context.Background(), p))
	return &p
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemStore()
	log := zap.NewNop()

	env := &testEnv{
		st:        st,
		sub:       NewSubmissionService(st, false, log),
		rev:       NewReviewService(st, log),
		dir:       NewDirectorService(st, log),
		exec:      NewExecutionService(st, log),
		risk:      NewRiskService(st, log),
		disc:      NewDiscussionService(st, log),
		directory: NewDirectoryService(st, log),
	}
	env.proposer = addUser(t, st, "paula", "paula@example.com", model.RoleProposer, "IT Department")
	env.finance = addUser(t, st, "frank", "frank@example.com", model.RoleFinance, "Finance")
	env.legal = addUser(t, st, "lea", "lea@example.com", model.RoleLegal, "Legal")
	env.ops = addUser(t, st, "omar", "omar@example.com", model.RoleOperations, "Operations")
	env.director = addUser(t, st, "dana", "dana@example.com", model.RoleDirector, "Executive")
	env.admin = addUser(t, st, "ada", "ada@example.com", model.RoleAdministrator, "IT Department")
	return env
}

func (e *testEnv) submit(t *testing.T) *model.Project {
	t.Helper()
	p, err := e.sub.Submit(context.Background(), e.proposer, SubmitInput{
		Title:       "Data platform refresh",
		Description: "Replace the reporting stack",
		Budget:      10000,
		Timeline:    "6 months",
		Department:  "IT Department",
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) approveAll(t *testing.T, projectID int64) {
	t.Helper()
	for _, reviewer := range []*model.UserProfile{e.finance, e.legal, e.ops} {
		_, err := e.rev.RecordDecision(context.Background(), projectID, reviewer.UserID, model.ReviewApproved, "ok")
		require.NoError(t, err)
	}
}

// approvedProject returns a project carried through review and director
// approval.
func (e *testEnv) approvedProject(t *testing.T) *model.Project {
	t.Helper()
	p := e.submit(t)
	e.approveAll(t, p.ID)
	require.NoError(t, e.dir.Decide(context.Background(), p.ID, e.director.UserID, model.StatusApproved, "go"))
	got, err := e.st.GetProject(context.Background(), p.ID)
	require.NoError(t, err)
	return got
}

func (e *testEnv) inProgressProject(t *testing.T) *model.Project {
	t.Helper()
	p := e.approvedProject(t)
	require.NoError(t, e.exec.Start(context.Background(), p.ID, e.proposer.UserID))
	got, err := e.st.GetProject(context.Background(), p.ID)
	require.NoError(t, err)
	return got
}

func (e *testEnv) eventsWithKey(key string) []store.Event {
	var out []store.Event
	for _, ev := range e.st.Events() {
		if ev.RoutingKey == key {
			out = append(out, ev)
		}
	}
	return out
}

// fakeRevoker is an in-memory TokenRevoker for auth tests.
type fakeRevoker struct {
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
)

// MemStore is an in-memory Store used by the engine tests. Each project
// record carries its own mutex: WithProject holds it for the whole scope,
// which is the same per-project serialization the PostgreSQL implementation
// gets from SELECT ... FOR UPDATE.
type MemStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*model.User
	byEmail  map[string]int64
	profiles map[int64]model.UserProfile
	projects map[int64]*memProject

	evmu   sync.Mutex
	events []Event
}

type memProject struct {
	mu          sync.Mutex
	project     model.Project
	reviewers   []model.ReviewerSlot
	risks       []model.RiskEntry
	milestones  []model.Milestone
	issues      []model.Issue
	updates     []model.Update
	discussions []model.DiscussionEntry
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[int64]*model.User),
		byEmail:  make(map[string]int64),
		profiles: make(map[int64]model.UserProfile),
		projects: make(map[int64]*memProject),
	}
}

// allocID takes s.mu and may be called with a project mutex held. The
// reverse order never occurs: s.mu is never held while acquiring rec.mu.
func (s *MemStore) allocID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// Events returns every domain event recorded so far, in commit order.
func (s *MemStore) Events() []Event {
	s.evmu.Lock()
	defer s.evmu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return apperr.New(apperr.CodeValidation, "store.create_user", 0, "email already exists")
	}
	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemStore) CreateUserWithProfile(_ context.Context, u *model.User, p model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return apperr.New(apperr.CodeValidation, "store.create_user", 0, "email already exists")
	}
	id := s.nextID + 1
	if _, ok := s.profiles[id]; ok {
		return apperr.New(apperr.CodeValidation, "store.create_profile", 0, "profile already exists for user %d", id)
	}
	s.nextID = id
	u.ID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.users[id] = &cp
	s.byEmail[u.Email] = id
	p.UserID = id
	s.profiles[id] = p
	return nil
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "store.get_user", 0, "user not found")
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemStore) GetProfile(_ context.Context, userID int64) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "store.get_profile", 0, "profile not found for user %d", userID)
	}
	return &p, nil
}

func (s *MemStore) EnsureProfile(_ context.Context, p model.UserProfile) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[p.UserID]; ok {
		return &existing, nil
	}
	s.profiles[p.UserID] = p
	return &p, nil
}

func (s *MemStore) CreateProfile(_ context.Context, p model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; ok {
		return apperr.New(apperr.CodeValidation, "store.create_profile", 0, "profile already exists for user %d", p.UserID)
	}
	s.profiles[p.UserID] = p
	return nil
}

func (s *MemStore) FindReviewer(_ context.Context, role model.Role, department string) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := s.profiles[id]
		if p.Role == role && p.Department == department {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *MemStore) CreateProject(_ context.Context, p *model.Project, reviewers []model.ReviewerSlot, risks []model.RiskEntry, events []Event) error {
	s.mu.Lock()
	s.nextID++
	p.ID = s.nextID
	s.mu.Unlock()

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	rec := &memProject{project: *p}
	for _, r := range reviewers {
		r.ProjectID = p.ID
		rec.reviewers = append(rec.reviewers, r)
	}
	for _, e := range risks {
		e.ProjectID = p.ID
		rec.risks = append(rec.risks, e)
	}

	s.mu.Lock()
	s.projects[p.ID] = rec
	s.mu.Unlock()

	s.record(events)
	return nil
}

func (s *MemStore) record(events []Event) {
	if len(events) == 0 {
		return
	}
	s.evmu.Lock()
	s.events = append(s.events, events...)
	s.evmu.Unlock()
}

func (s *MemStore) get(id int64) (*memProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "store.get_project", id, "project not found")
	}
	return rec, nil
}

func (s *MemStore) GetProject(_ context.Context, id int64) (*model.Project, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	cp := rec.project
	return &cp, nil
}

func (s *MemStore) GetProjectGraph(_ context.Context, id int64) (*ProjectGraph, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	g := &ProjectGraph{
		Project:     rec.project,
		Reviewers:   append([]model.ReviewerSlot(nil), rec.reviewers...),
		Risks:       append([]model.RiskEntry(nil), rec.risks...),
		Milestones:  append([]model.Milestone(nil), rec.milestones...),
		Issues:      append([]model.Issue(nil), rec.issues...),
		Updates:     append([]model.Update(nil), rec.updates...),
		Discussions: append([]model.DiscussionEntry(nil), rec.discussions...),
	}
	s.mu.Lock()
	if p, ok := s.profiles[rec.project.SubmitterID]; ok {
		g.Submitter = &p
	}
	s.mu.Unlock()
	return g, nil
}

func (s *MemStore) list(filter func(*memProject) bool) []model.Project {
	s.mu.Lock()
	recs := make([]*memProject, 0, len(s.projects))
	for _, rec := range s.projects {
		recs = append(recs, rec)
	}
	s.mu.Unlock()

	var out []model.Project
	for _, rec := range recs {
		rec.mu.Lock()
		if filter == nil || filter(rec) {
			out = append(out, rec.project)
		}
		rec.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemStore) ListProjects(context.Context) ([]model.Project, error) {
	return s.list(nil), nil
}

func (s *MemStore) ListProjectsBySubmitter(_ context.Context, userID int64) ([]model.Project, error) {
	return s.list(func(rec *memProject) bool {
		return rec.project.SubmitterID == userID
	}), nil
}

func (s *MemStore) ListProjectsByReviewer(_ context.Context, reviewerID int64) ([]model.Project, error) {
	return s.list(func(rec *memProject) bool {
		for _, slot := range rec.reviewers {
			if slot.ReviewerID == reviewerID {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemStore) WithProject(ctx context.Context, projectID int64, fn func(ctx context.Context, tx ProjectTx) error) error {
	rec, err := s.get(projectID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	// fn mutates a staged copy; nothing becomes visible unless it succeeds.
	tx := &memTx{store: s, rec: rec, staged: cloneProject(rec)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	// Commit field by field: rec embeds the held mutex, so the struct
	// itself must never be overwritten.
	rec.project = tx.staged.project
	rec.reviewers = tx.staged.reviewers
	rec.risks = tx.staged.risks
	rec.milestones = tx.staged.milestones
	rec.issues = tx.staged.issues
	rec.updates = tx.staged.updates
	rec.discussions = tx.staged.discussions
	s.record(tx.events)
	return nil
}

func cloneProject(rec *memProject) *memProject {
	return &memProject{
		project:     rec.project,
		reviewers:   append([]model.ReviewerSlot(nil), rec.reviewers...),
		risks:       append([]model.RiskEntry(nil), rec.risks...),
		milestones:  append([]model.Milestone(nil), rec.milestones...),
		issues:      append([]model.Issue(nil), rec.issues...),
		updates:     append([]model.Update(nil), rec.updates...),
		discussions: append([]model.DiscussionEntry(nil), rec.discussions...),
	}
}

type memTx struct {
	store  *MemStore
	rec    *memProject
	staged *memProject
	events []Event
	loaded *model.Project
}

func (t *memTx) Project() *model.Project {
	if t.loaded == nil {
		cp := t.staged.project
		t.loaded = &cp
	}
	return t.loaded
}

func (t *memTx) SaveProject(_ context.Context, p *model.Project) error {
	p.Version++
	p.UpdatedAt = time.Now()
	t.staged.project = *p
	return nil
}

func (t *memTx) Reviewers(context.Context) ([]model.ReviewerSlot, error) {
	return append([]model.ReviewerSlot(nil), t.staged.reviewers...), nil
}

func (t *memTx) GetReviewer(_ context.Context, reviewerID int64) (*model.ReviewerSlot, error) {
	for _, slot := range t.staged.reviewers {
		if slot.ReviewerID == reviewerID {
			cp := slot
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "store.get_reviewer", t.staged.project.ID, "no reviewer slot for user %d", reviewerID)
}

func (t *memTx) UpdateReviewer(_ context.Context, slot *model.ReviewerSlot) error {
	for i := range t.staged.reviewers {
		if t.staged.reviewers[i].ReviewerID == slot.ReviewerID {
			t.staged.reviewers[i] = *slot
			return nil
		}
	}
	return apperr.New(apperr.CodeNotFound, "store.update_reviewer", t.staged.project.ID, "no reviewer slot for user %d", slot.ReviewerID)
}

func (t *memTx) Milestones(context.Context) ([]model.Milestone, error) {
	return append([]model.Milestone(nil), t.staged.milestones...), nil
}

func (t *memTx) GetMilestone(_ context.Context, id int64) (*model.Milestone, error) {
	for _, m := range t.staged.milestones {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "store.get_milestone", t.staged.project.ID, "milestone %d not found", id)
}

func (t *memTx) AddMilestone(_ context.Context, m *model.Milestone) error {
	m.ID = t.store.allocID()
	m.ProjectID = t.staged.project.ID
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	t.staged.milestones = append(t.staged.milestones, *m)
	return nil
}

func (t *memTx) UpdateMilestone(_ context.Context, m *model.Milestone) error {
	for i := range t.staged.milestones {
		if t.staged.milestones[i].ID == m.ID {
			m.UpdatedAt = time.Now()
			t.staged.milestones[i] = *m
			return nil
		}
	}
	return apperr.New(apperr.CodeNotFound, "store.update_milestone", t.staged.project.ID, "milestone %d not found", m.ID)
}

func (t *memTx) GetIssue(_ context.Context, id int64) (*model.Issue, error) {
	for _, iss := range t.staged.issues {
		if iss.ID == id {
			cp := iss
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "store.get_issue", t.staged.project.ID, "issue %d not found", id)
}

func (t *memTx) AddIssue(_ context.Context, iss *model.Issue) error {
	iss.ID = t.store.allocID()
	iss.ProjectID = t.staged.project.ID
	if iss.CreatedAt.IsZero() {
		iss.CreatedAt = time.Now()
	}
	t.staged.issues = append(t.staged.issues, *iss)
	return nil
}

func (t *memTx) UpdateIssue(_ context.Context, iss *model.Issue) error {
	for i := range t.staged.issues {
		if t.staged.issues[i].ID == iss.ID {
			t.staged.issues[i] = *iss
			return nil
		}
	}
	return apperr.New(apperr.CodeNotFound, "store.update_issue", t.staged.project.ID, "issue %d not found", iss.ID)
}

func (t *memTx) AddUpdate(_ context.Context, u *model.Update) error {
	u.ID = t.store.allocID()
	u.ProjectID = t.staged.project.ID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	t.staged.updates = append(t.staged.updates, *u)
	return nil
}

func (t *memTx) AddDiscussion(_ context.Context, d *model.DiscussionEntry) error {
	d.ID = t.store.allocID()
	d.ProjectID = t.staged.project.ID
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	t.staged.discussions = append(t.staged.discussions, *d)
	return nil
}

func (t *memTx) UpdateRisk(_ context.Context, e *model.RiskEntry) error {
	for i := range t.staged.risks {
		if t.staged.risks[i].Category == e.Category {
			e.UpdatedAt = time.Now()
			t.staged.risks[i] = *e
			return nil
		}
	}
	return apperr.New(apperr.CodeNotFound, "store.update_risk", t.staged.project.ID, "no %s risk entry", e.Category)
}

func (t *memTx) AppendEvent(_ context.Context, routingKey string, payload any) error {
	t.events = append(t.events, Event{RoutingKey: routingKey, Payload: payload})
	return nil
}

package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"content-platform/domain/model"
	"content-platform/domain/repository"

	"gorm.io/datatypes"
)

// memoryStore is an in-memory IStore + ITransactor. A transaction snapshots
// every table and restores it when fn fails.
type memoryStore struct {
	mu sync.Mutex

	actions  map[string]model.Action
	contents map[string]model.TemporaryContent
	teams    map[string]model.Team
	members  map[string]bool
	outbox   map[string]model.OutboxEvent

	// approveRace makes the next MarkApproved report zero affected rows, as
	// if another transaction had approved first.
	approveRace bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		actions:  map[string]model.Action{},
		contents: map[string]model.TemporaryContent{},
		teams:    map[string]model.Team{},
		members:  map[string]bool{},
		outbox:   map[string]model.OutboxEvent{},
	}
}

func (s *memoryStore) addMember(teamID, userID string) {
	s.members[teamID+"/"+userID] = true
}

func (s *memoryStore) Actions() repository.IAction                     { return memActions{s} }
func (s *memoryStore) TemporaryContents() repository.ITemporaryContent { return memContents{s} }
func (s *memoryStore) Teams() repository.ITeam                         { return memTeams{s} }
func (s *memoryStore) Outbox() repository.IOutbox                      { return memOutbox{s} }

func (s *memoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, store repository.IStore) error) error {
	snapshot := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	actions  map[string]model.Action
	contents map[string]model.TemporaryContent
	teams    map[string]model.Team
	outbox   map[string]model.OutboxEvent
}

func (s *memoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memorySnapshot{
		actions:  copyMap(s.actions),
		contents: copyMap(s.contents),
		teams:    copyMap(s.teams),
		outbox:   copyMap(s.outbox),
	}
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = snap.actions
	s.contents = snap.contents
	s.teams = snap.teams
	s.outbox = snap.outbox
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memoryStore) contentsOf(actionID string) []model.TemporaryContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TemporaryContent
	for _, tc := range s.contents {
		if tc.BelongsTo(actionID) {
			out = append(out, tc)
		}
	}
	return out
}

type memActions struct{ s *memoryStore }

func (r memActions) Create(_ context.Context, action *model.Action) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.actions[action.ID] = *action
	return nil
}

func (r memActions) FindByID(_ context.Context, id string) (*model.Action, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.actions[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r memActions) ListByTeam(_ context.Context, teamID string, limit, offset int) ([]model.Action, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Action
	for _, a := range r.s.actions {
		if a.TeamID == teamID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r memActions) MarkApproved(_ context.Context, id string, result datatypes.JSON) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.approveRace {
		r.s.approveRace = false
		a := r.s.actions[id]
		a.Approved = true
		a.Status = model.ActionStatusApproved
		a.Result = datatypes.JSON(`{"imageUrl":"","title":"winner","body":"","hashtags":[]}`)
		r.s.actions[id] = a
		return false, nil
	}
	a, ok := r.s.actions[id]
	if !ok || a.Approved {
		return false, nil
	}
	a.Approved = true
	a.Status = model.ActionStatusApproved
	a.Result = result
	r.s.actions[id] = a
	return true, nil
}

func (r memActions) MarkInReview(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.actions[id]
	a.Status = model.ActionStatusInReview
	a.Revisions++
	r.s.actions[id] = a
	return nil
}

func (r memActions) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.actions[id]
	a.Status = status
	r.s.actions[id] = a
	return nil
}

func (r memActions) UpdateStatusAndResult(_ context.Context, id, status string, result datatypes.JSON) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.actions[id]
	a.Status = status
	a.Result = result
	r.s.actions[id] = a
	return nil
}

type memContents struct{ s *memoryStore }

func (r memContents) Create(_ context.Context, tc *model.TemporaryContent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.contents[tc.ID] = *tc
	return nil
}

func (r memContents) FindByID(_ context.Context, id string) (*model.TemporaryContent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tc, ok := r.s.contents[id]
	if !ok {
		return nil, nil
	}
	return &tc, nil
}

func (r memContents) DeleteByAction(_ context.Context, actionID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, tc := range r.s.contents {
		if tc.BelongsTo(actionID) {
			delete(r.s.contents, id)
			n++
		}
	}
	return n, nil
}

func (r memContents) DeleteUnattachedByOwner(_ context.Context, userID, teamID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, tc := range r.s.contents {
		if tc.ActionID == nil && tc.UserID == userID && tc.TeamID == teamID {
			delete(r.s.contents, id)
			n++
		}
	}
	return n, nil
}

func (r memContents) ExpireBy(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tc, ok := r.s.contents[id]
	if ok && tc.ExpiresAt.After(at) {
		tc.ExpiresAt = at
		r.s.contents[id] = tc
	}
	return nil
}

func (r memContents) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, tc := range r.s.contents {
		if tc.ExpiresAt.Before(now) {
			delete(r.s.contents, id)
			n++
		}
	}
	return n, nil
}

type memTeams struct{ s *memoryStore }

func (r memTeams) FindByID(_ context.Context, id string) (*model.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memTeams) IsMember(_ context.Context, teamID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.members[teamID+"/"+userID], nil
}

func (r memTeams) IncrementContentCount(_ context.Context, teamID string, delta int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.teams[teamID]
	t.ContentCount += delta
	r.s.teams[teamID] = t
	return t.ContentCount, nil
}

type memOutbox struct{ s *memoryStore }

func (r memOutbox) Enqueue(_ context.Context, evt *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox[evt.ID] = *evt
	return nil
}

func (r memOutbox) FetchPending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.OutboxEvent
	for _, e := range r.s.outbox {
		if e.Status == model.OutboxStatusPending {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memOutbox) MarkDispatched(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.outbox[id]
	if !ok || e.Status != model.OutboxStatusPending {
		return repository.ErrEventNotPending
	}
	e.Status = model.OutboxStatusDispatched
	e.DispatchedAt = &at
	r.s.outbox[id] = e
	return nil
}

func (r memOutbox) MarkFailed(_ context.Context, id string, errMsg string, maxAttempts int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := r.s.outbox[id]
	e.Attempts++
	e.LastError = &errMsg
	if e.Attempts >= maxAttempts {
		e.Status = model.OutboxStatusFailed
	}
	r.s.outbox[id] = e
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/defect-track/internal/access"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/internal/events"
	"github.com/spec-kit/defect-track/internal/lifecycle"
	"github.com/spec-kit/defect-track/internal/repository"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

type fakeDefectRepo struct {
	defects    map[string]*domain.Defect
	lastFilter repository.DefectFilter
}

func newFakeDefectRepo() *fakeDefectRepo {
	return &fakeDefectRepo{defects: make(map[string]*domain.Defect)}
}

func (r *fakeDefectRepo) Create(_ context.Context, defect *domain.Defect) error {
	copied := *defect
	r.defects[defect.ID] = &copied
	return nil
}

func (r *fakeDefectRepo) UpdateStatus(_ context.Context, defect *domain.Defect) error {
	stored, ok := r.defects[defect.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = defect.Status
	stored.UpdatedAt = defect.UpdatedAt
	return nil
}

func (r *fakeDefectRepo) GetByID(_ context.Context, id string) (*domain.Defect, error) {
	stored, ok := r.defects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeDefectRepo) ListWithFilter(_ context.Context, filter repository.DefectFilter) ([]domain.Defect, error) {
	r.lastFilter = filter
	out := make([]domain.Defect, 0, len(r.defects))
	for _, d := range r.defects {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDefectRepo) CountWithFilter(_ context.Context, filter repository.DefectFilter) (int, error) {
	return len(r.defects), nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) error { return nil }

func (r *fakeUserRepo) UpdateRoles(_ context.Context, id string, roles domain.Roles) error {
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	return nil, nil
}

type fakeHistoryRepo struct {
	entries   []domain.StatusHistoryEntry
	createErr error
	listErr   error
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.StatusHistoryEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByDefect(_ context.Context, defectID string, ascending bool) ([]domain.StatusHistoryEntry, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.StatusHistoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.DefectID == defectID {
			out = append(out, e)
		}
	}
	return out, nil
}

type serviceFixture struct {
	svc        *DefectService
	defects    *fakeDefectRepo
	history    *fakeHistoryRepo
	dispatcher events.Dispatcher
}

func newFixture(history *fakeHistoryRepo, users ...*domain.User) *serviceFixture {
	defects := newFakeDefectRepo()
	dispatcher := events.NewInMemoryDispatcher(nil)
	svc := NewDefectService(DefectDependencies{
		DefectRepo:  defects,
		UserRepo:    newFakeUserRepo(users...),
		HistoryRepo: history,
		Dispatcher:  dispatcher,
	})
	return &serviceFixture{svc: svc, defects: defects, history: history, dispatcher: dispatcher}
}

func validItems() []domain.LineItem {
	return []domain.LineItem{{Name: "Brick", Quantity: 100, Price: 50.5}}
}

func engineerActor(id string) access.Actor {
	return access.Actor{ID: id, Roles: domain.Roles{domain.RoleEngineer}}
}

func adminActor(id string) access.Actor {
	return access.Actor{ID: id, Roles: domain.Roles{domain.RoleAdmin}}
}

func TestCreateRecordsHistoryAndPublishesOnce(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})
	actor := engineerActor("eng-1")

	defect, err := f.svc.Create(context.Background(), actor, lifecycle.CreateInput{Items: validItems()})
	require.NoError(t, err)

	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	assert.Equal(t, defect.ID, entry.DefectID)
	assert.Equal(t, "eng-1", entry.UserID)
	assert.Nil(t, entry.OldStatus)
	assert.Equal(t, domain.StatusCreated, entry.NewStatus)

	queued := f.dispatcher.Drain()
	require.Len(t, queued, 1)
	assert.Equal(t, events.EventDefectCreated, queued[0].Type)
	assert.Equal(t, defect.ID, queued[0].DefectID)
}

func TestCreateRejectionLeavesNoTrace(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})
	actor := access.Actor{ID: "u-1", Roles: domain.Roles{domain.RoleUser}}

	_, err := f.svc.Create(context.Background(), actor, lifecycle.CreateInput{Items: validItems()})
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "FORBIDDEN"))

	assert.Empty(t, f.defects.defects)
	assert.Empty(t, f.history.entries)
	assert.Empty(t, f.dispatcher.Drain())
}

func TestUpdateStatusPersistsRecordsAndPublishes(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})
	actor := engineerActor("eng-1")

	defect, err := f.svc.Create(context.Background(), actor, lifecycle.CreateInput{Items: validItems()})
	require.NoError(t, err)
	f.dispatcher.ClearQueue()

	updated, err := f.svc.UpdateStatus(context.Background(), actor, defect.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	stored, err := f.defects.GetByID(context.Background(), defect.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)

	require.Len(t, f.history.entries, 2)
	last := f.history.entries[1]
	require.NotNil(t, last.OldStatus)
	assert.Equal(t, domain.StatusCreated, *last.OldStatus)
	assert.Equal(t, domain.StatusInProgress, last.NewStatus)

	queued := f.dispatcher.Drain()
	require.Len(t, queued, 1)
	assert.Equal(t, events.EventDefectStatusChanged, queued[0].Type)
}

func TestUpdateStatusRejectionPublishesNothing(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})
	creator := engineerActor("eng-1")

	defect, err := f.svc.Create(context.Background(), creator, lifecycle.CreateInput{Items: validItems()})
	require.NoError(t, err)
	f.dispatcher.ClearQueue()

	outsider := engineerActor("eng-2")
	_, err = f.svc.UpdateStatus(context.Background(), outsider, defect.ID, domain.StatusInProgress)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "FORBIDDEN"))

	assert.Len(t, f.history.entries, 1, "only the creation entry")
	assert.Empty(t, f.dispatcher.Drain())

	stored, _ := f.defects.GetByID(context.Background(), defect.ID)
	assert.Equal(t, domain.StatusCreated, stored.Status)
}

func TestLedgerFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{createErr: errors.New("ledger down")})
	actor := engineerActor("eng-1")

	defect, err := f.svc.Create(context.Background(), actor, lifecycle.CreateInput{Items: validItems()})
	require.NoError(t, err, "history write failure is swallowed")

	_, err = f.svc.UpdateStatus(context.Background(), actor, defect.ID, domain.StatusInProgress)
	require.NoError(t, err)

	queued := f.dispatcher.Drain()
	assert.Len(t, queued, 2, "events still published")
}

func TestHistoryDegradesToEmptyOnStoreFailure(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{listErr: errors.New("ledger down")})
	actor := engineerActor("eng-1")

	defect, err := f.svc.Create(context.Background(), actor, lifecycle.CreateInput{Items: validItems()})
	require.NoError(t, err)

	entries, err := f.svc.History(context.Background(), actor, defect.ID, false)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistoryRequiresViewAccess(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})
	creator := engineerActor("eng-1")

	defect, err := f.svc.Create(context.Background(), creator, lifecycle.CreateInput{Items: validItems()})
	require.NoError(t, err)

	_, err = f.svc.History(context.Background(), engineerActor("eng-2"), defect.ID, false)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "FORBIDDEN"))
}

func TestCancelKeepsRowAndPublishesCancelled(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})
	actor := engineerActor("eng-1")

	defect, err := f.svc.Create(context.Background(), actor, lifecycle.CreateInput{Items: validItems()})
	require.NoError(t, err)
	f.dispatcher.ClearQueue()

	cancelled, err := f.svc.Cancel(context.Background(), actor, defect.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	stored, err := f.defects.GetByID(context.Background(), defect.ID)
	require.NoError(t, err, "cancellation never deletes the row")
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	queued := f.dispatcher.Drain()
	require.Len(t, queued, 1)
	assert.Equal(t, events.EventDefectCancelled, queued[0].Type)
}

func TestGetUnknownDefect(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})

	_, err := f.svc.Get(context.Background(), adminActor("adm-1"), "missing")
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "NOT_FOUND"))
}

func TestListScopesEngineersToTheirAssignments(t *testing.T) {
	f := newFixture(&fakeHistoryRepo{})
	actor := engineerActor("eng-1")

	_, _, err := f.svc.List(context.Background(), actor, DefectListFilter{})
	require.NoError(t, err)
	require.NotNil(t, f.defects.lastFilter.AssignedTo)
	assert.Equal(t, "eng-1", *f.defects.lastFilter.AssignedTo)

	_, _, err = f.svc.List(context.Background(), adminActor("adm-1"), DefectListFilter{})
	require.NoError(t, err)
	assert.Nil(t, f.defects.lastFilter.AssignedTo, "admins see the full set")
}

package lifecycle

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/defect-track/internal/access"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

type fakeResolver struct {
	users map[string]*domain.User
}

func (r *fakeResolver) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func newResolver(users ...*domain.User) *fakeResolver {
	r := &fakeResolver{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func actorWith(id string, roles ...domain.Role) access.Actor {
	return access.Actor{ID: id, Roles: domain.Roles(roles)}
}

func validItems() []domain.LineItem {
	return []domain.LineItem{
		{Name: "Brick", Quantity: 100, Price: 50.5},
		{Name: "Cement", Quantity: 50, Price: 150},
	}
}

func strPtr(s string) *string { return &s }

func TestCreateEngineerSelfAssigns(t *testing.T) {
	actor := actorWith("eng-1", domain.RoleEngineer)

	defect, transition, err := Create(context.Background(), actor, CreateInput{Items: validItems()}, newResolver())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCreated, defect.Status)
	require.NotNil(t, defect.AssignedTo)
	assert.Equal(t, "eng-1", *defect.AssignedTo)
	assert.Equal(t, "eng-1", defect.UserID)
	assert.InDelta(t, 12550, defect.Total, 0.001)
	assert.Nil(t, transition.OldStatus)
	assert.Equal(t, domain.StatusCreated, transition.NewStatus)
	assert.NotEmpty(t, defect.ID)
}

func TestCreateAdminWithoutAssigneeRejected(t *testing.T) {
	actor := actorWith("adm-1", domain.RoleAdmin)

	_, _, err := Create(context.Background(), actor, CreateInput{Items: validItems()}, newResolver())
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "ASSIGNMENT_REQUIRED"))
}

func TestCreateManagerAssignsEngineer(t *testing.T) {
	engineer := &domain.User{ID: "eng-7", Roles: domain.Roles{domain.RoleEngineer}}
	actor := actorWith("mgr-1", domain.RoleManager)

	defect, _, err := Create(context.Background(), actor,
		CreateInput{Items: validItems(), AssignedTo: strPtr("eng-7")}, newResolver(engineer))
	require.NoError(t, err)

	require.NotNil(t, defect.AssignedTo)
	assert.Equal(t, "eng-7", *defect.AssignedTo)
	assert.Equal(t, "mgr-1", defect.UserID)
}

func TestCreateAssigneeMustBeEngineer(t *testing.T) {
	customer := &domain.User{ID: "cust-1", Roles: domain.Roles{domain.RoleCustomer}}
	actor := actorWith("adm-1", domain.RoleAdmin)

	_, _, err := Create(context.Background(), actor,
		CreateInput{Items: validItems(), AssignedTo: strPtr("cust-1")}, newResolver(customer))
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "INVALID_ASSIGNMENT"))
}

func TestCreateUnknownAssignee(t *testing.T) {
	actor := actorWith("adm-1", domain.RoleAdmin)

	_, _, err := Create(context.Background(), actor,
		CreateInput{Items: validItems(), AssignedTo: strPtr("ghost")}, newResolver())
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "NOT_FOUND"))
}

func TestCreateExplicitAssigneeWithoutCapability(t *testing.T) {
	engineer := &domain.User{ID: "eng-7", Roles: domain.Roles{domain.RoleEngineer}}
	actor := actorWith("eng-1", domain.RoleEngineer)

	_, _, err := Create(context.Background(), actor,
		CreateInput{Items: validItems(), AssignedTo: strPtr("eng-7")}, newResolver(engineer))
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "FORBIDDEN"))
}

func TestCreateItemValidation(t *testing.T) {
	actor := actorWith("eng-1", domain.RoleEngineer)

	tests := []struct {
		name  string
		items []domain.LineItem
	}{
		{"empty items", nil},
		{"blank name", []domain.LineItem{{Name: "  ", Quantity: 1, Price: 1}}},
		{"zero quantity", []domain.LineItem{{Name: "Brick", Quantity: 0, Price: 1}}},
		{"negative quantity", []domain.LineItem{{Name: "Brick", Quantity: -2, Price: 1}}},
		{"negative price", []domain.LineItem{{Name: "Brick", Quantity: 1, Price: -0.5}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Create(context.Background(), actor, CreateInput{Items: tc.items}, newResolver())
			require.Error(t, err)
			assert.True(t, errorutil.HasCode(err, "VALIDATION_FAILED"))
		})
	}
}

func TestCreateZeroPriceAllowed(t *testing.T) {
	actor := actorWith("eng-1", domain.RoleEngineer)
	items := []domain.LineItem{{Name: "Inspection", Quantity: 1, Price: 0}}

	defect, _, err := Create(context.Background(), actor, CreateInput{Items: items}, newResolver())
	require.NoError(t, err)
	assert.Zero(t, defect.Total)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	actor := actorWith("adm-1", domain.RoleAdmin)
	defect := &domain.Defect{ID: "d-1", UserID: "u-1", Status: domain.StatusCreated}

	transition, err := UpdateStatus(defect, actor, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, defect.Status)
	require.NotNil(t, transition.OldStatus)
	assert.Equal(t, domain.StatusCreated, *transition.OldStatus)
	assert.Equal(t, domain.StatusInProgress, transition.NewStatus)

	_, err = UpdateStatus(defect, actor, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, defect.Status)
}

func TestUpdateStatusTerminalBeatsEverything(t *testing.T) {
	// A terminal defect refuses transitions before any other check,
	// whatever the actor's role.
	actor := actorWith("adm-1", domain.RoleAdmin)
	defect := &domain.Defect{ID: "d-1", Status: domain.StatusCompleted}

	_, err := UpdateStatus(defect, actor, domain.StatusInProgress)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "TERMINAL_STATE"))

	defect.Status = domain.StatusCancelled
	_, err = UpdateStatus(defect, actor, domain.DefectStatus("bogus"))
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "TERMINAL_STATE"), "terminal check precedes enum validation")
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	actor := actorWith("adm-1", domain.RoleAdmin)
	defect := &domain.Defect{ID: "d-1", Status: domain.StatusCreated}

	_, err := UpdateStatus(defect, actor, domain.DefectStatus("paused"))
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "VALIDATION_FAILED"))
	assert.Equal(t, domain.StatusCreated, defect.Status)
}

func TestUpdateStatusForbiddenActors(t *testing.T) {
	defect := &domain.Defect{ID: "d-1", Status: domain.StatusCreated, AssignedTo: strPtr("eng-1")}

	_, err := UpdateStatus(defect, actorWith("eng-2", domain.RoleEngineer), domain.StatusInProgress)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "FORBIDDEN"), "non-assignee engineer cannot edit")

	_, err = UpdateStatus(defect, actorWith("cust-1", domain.RoleCustomer), domain.StatusInProgress)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "FORBIDDEN"))

	assert.Equal(t, domain.StatusCreated, defect.Status)
}

func TestUpdateStatusOffPathTransition(t *testing.T) {
	actor := actorWith("adm-1", domain.RoleAdmin)
	defect := &domain.Defect{ID: "d-1", Status: domain.StatusCreated}

	_, err := UpdateStatus(defect, actor, domain.StatusCompleted)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "VALIDATION_FAILED"), "created cannot skip to completed")
	assert.Equal(t, domain.StatusCreated, defect.Status)
}

func TestCancelFromAnyActiveStatus(t *testing.T) {
	actor := actorWith("adm-1", domain.RoleAdmin)

	for _, start := range []domain.DefectStatus{domain.StatusCreated, domain.StatusInProgress} {
		defect := &domain.Defect{ID: "d-1", Status: start}
		transition, err := Cancel(defect, actor)
		require.NoError(t, err, string(start))
		assert.Equal(t, domain.StatusCancelled, defect.Status)
		assert.Equal(t, start, *transition.OldStatus)
	}

	defect := &domain.Defect{ID: "d-1", Status: domain.StatusCancelled}
	_, err := Cancel(defect, actor)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "TERMINAL_STATE"), "cancel is not idempotent")
}

func TestUpdateStatusNilDefect(t *testing.T) {
	_, err := UpdateStatus(nil, actorWith("adm-1", domain.RoleAdmin), domain.StatusInProgress)
	require.Error(t, err)
	assert.True(t, errorutil.HasCode(err, "NOT_FOUND"))
}

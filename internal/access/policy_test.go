package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/defect-track/internal/domain"
)

func actorWith(id string, roles ...domain.Role) Actor {
	return Actor{ID: id, Roles: domain.Roles(roles)}
}

func defectAssignedTo(id string) *domain.Defect {
	return &domain.Defect{ID: "d-1", UserID: "creator", AssignedTo: &id, Status: domain.StatusCreated}
}

func TestCanView(t *testing.T) {
	unassigned := &domain.Defect{ID: "d-1", UserID: "creator", Status: domain.StatusCreated}

	tests := []struct {
		name   string
		actor  Actor
		defect *domain.Defect
		want   bool
	}{
		{"admin sees everything", actorWith("a-1", domain.RoleAdmin), unassigned, true},
		{"manager sees everything", actorWith("m-1", domain.RoleManager), unassigned, true},
		{"director sees everything", actorWith("dir-1", domain.RoleDirector), unassigned, true},
		{"customer sees everything", actorWith("c-1", domain.RoleCustomer), unassigned, true},
		{"engineer sees own assignment", actorWith("e-1", domain.RoleEngineer), defectAssignedTo("e-1"), true},
		{"engineer blocked from others", actorWith("e-1", domain.RoleEngineer), defectAssignedTo("e-2"), false},
		{"engineer blocked from unassigned", actorWith("e-1", domain.RoleEngineer), unassigned, false},
		{"bare user blocked", actorWith("u-1", domain.RoleUser), unassigned, false},
		{"no roles blocked", actorWith("u-1"), unassigned, false},
		{"nil defect blocked", actorWith("a-1", domain.RoleAdmin), nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanView(tc.actor, tc.defect))
		})
	}
}

func TestCanEdit(t *testing.T) {
	unassigned := &domain.Defect{ID: "d-1", UserID: "creator", Status: domain.StatusCreated}

	tests := []struct {
		name   string
		actor  Actor
		defect *domain.Defect
		want   bool
	}{
		{"admin edits everything", actorWith("a-1", domain.RoleAdmin), unassigned, true},
		{"manager edits everything", actorWith("m-1", domain.RoleManager), unassigned, true},
		{"director can view but not edit", actorWith("dir-1", domain.RoleDirector), unassigned, false},
		{"customer can view but not edit", actorWith("c-1", domain.RoleCustomer), unassigned, false},
		{"engineer edits own assignment", actorWith("e-1", domain.RoleEngineer), defectAssignedTo("e-1"), true},
		{"engineer blocked from others", actorWith("e-1", domain.RoleEngineer), defectAssignedTo("e-2"), false},
		{"nil defect blocked", actorWith("a-1", domain.RoleAdmin), nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanEdit(tc.actor, tc.defect))
		})
	}
}

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(actorWith("a-1", domain.RoleAdmin)))
	assert.True(t, CanCreate(actorWith("m-1", domain.RoleManager)))
	assert.True(t, CanCreate(actorWith("e-1", domain.RoleEngineer)))
	assert.False(t, CanCreate(actorWith("dir-1", domain.RoleDirector)))
	assert.False(t, CanCreate(actorWith("c-1", domain.RoleCustomer)))
	assert.False(t, CanCreate(actorWith("u-1", domain.RoleUser)))
	assert.False(t, CanCreate(actorWith("u-1")))
}

func TestCanAssign(t *testing.T) {
	assert.True(t, CanAssign(actorWith("a-1", domain.RoleAdmin)))
	assert.True(t, CanAssign(actorWith("m-1", domain.RoleManager)))
	assert.False(t, CanAssign(actorWith("e-1", domain.RoleEngineer)))
	assert.False(t, CanAssign(actorWith("u-1", domain.RoleUser)))
}

func TestCanComment(t *testing.T) {
	assert.True(t, CanComment(actorWith("c-1", domain.RoleCustomer)))
	assert.True(t, CanComment(actorWith("dir-1", domain.RoleDirector)))
	assert.False(t, CanComment(actorWith("u-1", domain.RoleUser)))
	assert.False(t, CanComment(actorWith("u-1")))
}

func TestCanManagePhotos(t *testing.T) {
	assert.True(t, CanManagePhotos(actorWith("a-1", domain.RoleAdmin)))
	assert.True(t, CanManagePhotos(actorWith("e-1", domain.RoleEngineer)))
	assert.False(t, CanManagePhotos(actorWith("m-1", domain.RoleManager)))
	assert.False(t, CanManagePhotos(actorWith("c-1", domain.RoleCustomer)))
}

func TestMultiRoleActorGetsUnionOfCapabilities(t *testing.T) {
	actor := actorWith("x-1", domain.RoleEngineer, domain.RoleManager)

	assert.True(t, CanAssign(actor))
	assert.True(t, CanEdit(actor, defectAssignedTo("someone-else")))
	assert.True(t, CanManagePhotos(actor))
}

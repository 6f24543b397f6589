// Package lifecycle implements the defect status state machine and the
// assignment resolution applied at creation. It is a pure function of
// the defect's current state plus inputs; persistence and event fan-out
// belong to the caller.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/defect-track/internal/access"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// AssigneeResolver looks up the requested assignee so its role set can
// be verified.
type AssigneeResolver interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// CreateInput carries the caller-supplied creation payload.
type CreateInput struct {
	Items      []domain.LineItem
	AssignedTo *string
}

// Transition records one status change. A nil OldStatus is the
// creation pseudo-transition.
type Transition struct {
	OldStatus *domain.DefectStatus
	NewStatus domain.DefectStatus
}

var allowedTransitions = map[domain.DefectStatus][]domain.DefectStatus{
	domain.StatusCreated:    {domain.StatusInProgress, domain.StatusCancelled},
	domain.StatusInProgress: {domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusCompleted:  {},
	domain.StatusCancelled:  {},
}

func isAllowedTransition(current, next domain.DefectStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Create validates items, resolves the final assignee and produces a
// fresh defect in status created together with its initial transition.
//
// Assignment resolution, in order: an explicit assignee requires assign
// capability and an engineer target; engineers without an explicit
// assignee self-assign; admins/managers must name an engineer; any
// other creator leaves the defect unassigned.
func Create(ctx context.Context, actor access.Actor, input CreateInput, resolver AssigneeResolver) (*domain.Defect, Transition, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, Transition{}, err
	}

	var assignedTo *string
	switch {
	case input.AssignedTo != nil && access.CanAssign(actor):
		assignee, err := resolveAssignee(ctx, resolver, *input.AssignedTo)
		if err != nil {
			return nil, Transition{}, err
		}
		if !assignee.Roles.Has(domain.RoleEngineer) {
			return nil, Transition{}, errorutil.NewInvalidAssignment(
				"defect can only be assigned to an engineer",
				map[string]any{"assigned_to": *input.AssignedTo})
		}
		assignedTo = input.AssignedTo
	case input.AssignedTo != nil:
		return nil, Transition{}, errorutil.NewForbidden("no permission to assign defects to other users")
	case actor.Roles.Has(domain.RoleEngineer):
		id := actor.ID
		assignedTo = &id
	case access.CanAssign(actor):
		return nil, Transition{}, errorutil.NewAssignmentRequired("defect must be assigned to an engineer")
	default:
		// non-assigning, non-engineer creator: left unassigned
	}

	now := time.Now()
	defect := &domain.Defect{
		ID:         uuid.NewString(),
		UserID:     actor.ID,
		AssignedTo: assignedTo,
		Items:      input.Items,
		Status:     domain.StatusCreated,
		Total:      domain.ComputeTotal(input.Items),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return defect, Transition{OldStatus: nil, NewStatus: domain.StatusCreated}, nil
}

// UpdateStatus applies a transition in place and returns its record.
// Terminal defects are never mutable, whatever the actor's role.
func UpdateStatus(defect *domain.Defect, actor access.Actor, next domain.DefectStatus) (Transition, error) {
	if defect == nil {
		return Transition{}, errorutil.NewNotFound("defect", nil)
	}
	if defect.Status.Terminal() {
		return Transition{}, errorutil.NewTerminalState(
			"defect is in a terminal status",
			map[string]any{"status": defect.Status})
	}
	if !next.Valid() {
		return Transition{}, errorutil.NewValidationError(
			"invalid status value",
			map[string]any{"status": next})
	}
	if !access.CanEdit(actor, defect) {
		return Transition{}, errorutil.NewForbidden("access denied")
	}
	if !isAllowedTransition(defect.Status, next) {
		return Transition{}, errorutil.NewValidationError(
			"invalid status transition",
			map[string]any{"from": defect.Status, "to": next})
	}

	old := defect.Status
	defect.Status = next
	defect.UpdatedAt = time.Now()
	return Transition{OldStatus: &old, NewStatus: next}, nil
}

// Cancel moves a defect to cancelled from any non-terminal status.
func Cancel(defect *domain.Defect, actor access.Actor) (Transition, error) {
	return UpdateStatus(defect, actor, domain.StatusCancelled)
}

func validateItems(items []domain.LineItem) error {
	if len(items) == 0 {
		return errorutil.NewValidationError("items must not be empty", nil)
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return errorutil.NewValidationError("item name must not be empty", map[string]any{"index": i})
		}
		if item.Quantity <= 0 {
			return errorutil.NewValidationError("item quantity must be positive", map[string]any{"index": i})
		}
		if item.Price < 0 {
			return errorutil.NewValidationError("item price must not be negative", map[string]any{"index": i})
		}
	}
	return nil
}

func resolveAssignee(ctx context.Context, resolver AssigneeResolver, id string) (*domain.User, error) {
	if resolver == nil {
		return nil, errorutil.NewNotFound("assigned user", map[string]any{"assigned_to": id})
	}
	assignee, err := resolver.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("assigned user", map[string]any{"assigned_to": id})
		}
		return nil, errorutil.MapError(err)
	}
	if assignee == nil {
		return nil, errorutil.NewNotFound("assigned user", map[string]any{"assigned_to": id})
	}
	return assignee, nil
}

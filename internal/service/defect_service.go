package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/defect-track/internal/access"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/internal/events"
	"github.com/spec-kit/defect-track/internal/lifecycle"
	"github.com/spec-kit/defect-track/internal/persistence"
	"github.com/spec-kit/defect-track/internal/repository"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// DefectService coordinates the defect lifecycle: policy gating,
// state transitions, best-effort history recording and event emission.
type DefectService struct {
	defects    repository.DefectRepository
	users      repository.UserRepository
	history    repository.StatusHistoryRepository
	dispatcher events.Dispatcher
	cache      *persistence.Redis
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// DefectDependencies bundles collaborators for the defect service.
type DefectDependencies struct {
	DefectRepo  repository.DefectRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.StatusHistoryRepository
	Dispatcher  events.Dispatcher
	Cache       *persistence.Redis
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// DefectListFilter describes listing parameters accepted from callers.
type DefectListFilter struct {
	Status  *domain.DefectStatus
	SortBy  string
	SortAsc bool
	Page    int
	Limit   int
}

// NewDefectService constructs the service.
func NewDefectService(deps DefectDependencies) *DefectService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefectService{
		defects:    deps.DefectRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		logger:     logger,
	}
}

// Create opens a new defect on behalf of the actor.
func (s *DefectService) Create(ctx context.Context, actor access.Actor, input lifecycle.CreateInput) (*domain.Defect, error) {
	if !access.CanCreate(actor) {
		return nil, errorutil.NewForbidden("no permission to create defects")
	}

	defect, transition, err := lifecycle.Create(ctx, actor, input, s.users)
	if err != nil {
		return nil, err
	}
	if err := s.defects.Create(ctx, defect); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.recordTransition(ctx, defect, actor.ID, transition)
	s.publish(ctx, events.Event{
		Type:     events.EventDefectCreated,
		DefectID: defect.ID,
		ActorID:  actor.ID,
		Payload: events.DefectCreatedPayload{
			UserID:     defect.UserID,
			AssignedTo: defect.AssignedTo,
			Status:     defect.Status,
			Total:      defect.Total,
		},
	})
	return defect, nil
}

// Get returns one defect after a view-policy check.
func (s *DefectService) Get(ctx context.Context, actor access.Actor, defectID string) (*domain.Defect, error) {
	defect, err := s.loadDefect(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(actor, defect) {
		return nil, errorutil.NewForbidden("access denied")
	}
	return defect, nil
}

// List returns defects visible to the actor plus a total count.
// Engineers are scoped to defects assigned to them.
func (s *DefectService) List(ctx context.Context, actor access.Actor, filter DefectListFilter) ([]domain.Defect, int, error) {
	repoFilter := repository.DefectFilter{
		Status:  filter.Status,
		SortBy:  filter.SortBy,
		SortAsc: filter.SortAsc,
	}
	if actor.Roles.Has(domain.RoleEngineer) {
		id := actor.ID
		repoFilter.AssignedTo = &id
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	repoFilter.Limit = limit
	repoFilter.Offset = (page - 1) * limit

	defects, err := s.defects.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, errorutil.MapError(err)
	}
	total, err := s.defects.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, errorutil.MapError(err)
	}
	return defects, total, nil
}

// UpdateStatus applies a status transition requested by the actor.
func (s *DefectService) UpdateStatus(ctx context.Context, actor access.Actor, defectID string, next domain.DefectStatus) (*domain.Defect, error) {
	defect, err := s.loadDefect(ctx, defectID)
	if err != nil {
		return nil, err
	}

	transition, err := lifecycle.UpdateStatus(defect, actor, next)
	if err != nil {
		return nil, err
	}
	if err := s.defects.UpdateStatus(ctx, defect); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.invalidate(ctx, defect.ID)

	s.recordTransition(ctx, defect, actor.ID, transition)
	s.publish(ctx, events.Event{
		Type:     events.EventDefectStatusChanged,
		DefectID: defect.ID,
		ActorID:  actor.ID,
		Payload: events.DefectStatusChangedPayload{
			UserID:     defect.UserID,
			AssignedTo: defect.AssignedTo,
			OldStatus:  *transition.OldStatus,
			NewStatus:  transition.NewStatus,
		},
	})
	return defect, nil
}

// Cancel moves a defect to its terminal cancelled status. The row is
// kept; cancellation is never a physical delete.
func (s *DefectService) Cancel(ctx context.Context, actor access.Actor, defectID string) (*domain.Defect, error) {
	defect, err := s.loadDefect(ctx, defectID)
	if err != nil {
		return nil, err
	}

	transition, err := lifecycle.Cancel(defect, actor)
	if err != nil {
		return nil, err
	}
	if err := s.defects.UpdateStatus(ctx, defect); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.invalidate(ctx, defect.ID)

	s.recordTransition(ctx, defect, actor.ID, transition)
	s.publish(ctx, events.Event{
		Type:     events.EventDefectCancelled,
		DefectID: defect.ID,
		ActorID:  actor.ID,
		Payload: events.DefectCancelledPayload{
			UserID:     defect.UserID,
			AssignedTo: defect.AssignedTo,
			OldStatus:  *transition.OldStatus,
			NewStatus:  transition.NewStatus,
		},
	})
	return defect, nil
}

// History lists the status ledger for a defect. A failing or missing
// ledger store degrades to an empty result, never an error.
func (s *DefectService) History(ctx context.Context, actor access.Actor, defectID string, ascending bool) ([]domain.StatusHistoryEntry, error) {
	defect, err := s.loadDefect(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(actor, defect) {
		return nil, errorutil.NewForbidden("access denied")
	}
	if s.history == nil {
		return []domain.StatusHistoryEntry{}, nil
	}
	entries, err := s.history.ListByDefect(ctx, defectID, ascending)
	if err != nil {
		s.logger.Warn("status history unavailable",
			zap.String("defect_id", defectID),
			zap.Error(err))
		return []domain.StatusHistoryEntry{}, nil
	}
	if entries == nil {
		entries = []domain.StatusHistoryEntry{}
	}
	return entries, nil
}

// recordTransition appends to the status ledger. The transition is the
// authoritative action; a failed ledger write is logged and swallowed.
func (s *DefectService) recordTransition(ctx context.Context, defect *domain.Defect, actorID string, transition lifecycle.Transition) {
	if s.history == nil {
		return
	}
	entry := &domain.StatusHistoryEntry{
		ID:        uuid.NewString(),
		DefectID:  defect.ID,
		UserID:    actorID,
		OldStatus: transition.OldStatus,
		NewStatus: transition.NewStatus,
		CreatedAt: time.Now(),
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record status history",
			zap.String("defect_id", defect.ID),
			zap.String("new_status", string(transition.NewStatus)),
			zap.Error(err))
	}
}

func (s *DefectService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, event)
}

func (s *DefectService) loadDefect(ctx context.Context, defectID string) (*domain.Defect, error) {
	if cached := s.cachedDefect(ctx, defectID); cached != nil {
		return cached, nil
	}
	defect, err := s.defects.GetByID(ctx, defectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("defect", map[string]any{"defect_id": defectID})
		}
		return nil, errorutil.MapError(err)
	}
	s.storeDefect(ctx, defect)
	return defect, nil
}

func defectCacheKey(defectID string) string {
	return "defect:" + defectID
}

func (s *DefectService) cachedDefect(ctx context.Context, defectID string) *domain.Defect {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, defectCacheKey(defectID))
	if err != nil || raw == "" {
		return nil
	}
	var defect domain.Defect
	if err := json.Unmarshal([]byte(raw), &defect); err != nil {
		return nil
	}
	return &defect
}

func (s *DefectService) storeDefect(ctx context.Context, defect *domain.Defect) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(defect)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, defectCacheKey(defect.ID), string(raw), s.cacheTTL); err != nil {
		s.logger.Debug("defect cache write failed", zap.Error(err))
	}
}

func (s *DefectService) invalidate(ctx context.Context, defectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, defectCacheKey(defectID)); err != nil {
		s.logger.Debug("defect cache invalidation failed", zap.Error(err))
	}
}

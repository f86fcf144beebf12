package services

import (
	"context"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/history"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/pkg/observability"
	"go.uber.org/zap"
)

// HistoryService records edit history for visits. Recording is best effort:
// a history failure must never fail the save that triggered it, so every
// error here is logged and swallowed.
type HistoryService struct {
	historyRepo ports.HistoryRepository
	userRepo    ports.UserRepository
	tracer      *observability.Tracer
	logger      *zap.Logger
}

// NewHistoryService creates a history service. Tracer may be nil.
func NewHistoryService(
	historyRepo ports.HistoryRepository,
	userRepo ports.UserRepository,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		userRepo:    userRepo,
		tracer:      tracer,
		logger:      logger,
	}
}

// RecordVisitUpdate diffs the visit before and after an edit, appends the
// resulting events stamped with the acting user, and compacts any full
// batches of events into snapshots.
func (s *HistoryService) RecordVisitUpdate(ctx context.Context, before, after *visit.Visit, actorID string) {
	record := func(ctx context.Context) error {
		s.record(ctx, before, after, actorID)
		return nil
	}
	if s.tracer != nil {
		_ = s.tracer.TraceFunction(ctx, "history.record_visit_update", record)
		return
	}
	_ = record(ctx)
}

func (s *HistoryService) record(ctx context.Context, before, after *visit.Visit, actorID string) {
	events := history.Diff(before, after, time.Now())
	if len(events) == 0 {
		return
	}

	actorName := s.resolveActorName(ctx, actorID)
	for i := range events {
		events[i].ActorID = actorID
		events[i].ActorName = actorName
	}

	visitID := after.ID
	if err := s.historyRepo.AppendEvents(ctx, visitID, events); err != nil {
		s.logger.Warn("failed to append history events",
			zap.String("visit_id", visitID),
			zap.Int("event_count", len(events)),
			zap.Error(err))
		return
	}

	s.compact(ctx, visitID)
}

// Compact runs snapshot compaction for a visit's event log.
func (s *HistoryService) Compact(ctx context.Context, visitID string) {
	s.compact(ctx, visitID)
}

func (s *HistoryService) compact(ctx context.Context, visitID string) {
	events, err := s.historyRepo.ListEvents(ctx, visitID)
	if err != nil {
		s.logger.Warn("failed to list history events for compaction",
			zap.String("visit_id", visitID), zap.Error(err))
		return
	}
	snapshots, err := s.historyRepo.ListSnapshots(ctx, visitID)
	if err != nil {
		s.logger.Warn("failed to list snapshots for compaction",
			zap.String("visit_id", visitID), zap.Error(err))
		return
	}

	for _, snap := range history.PlanCompaction(events, snapshots, time.Now()) {
		if err := s.historyRepo.SaveSnapshot(ctx, snap); err != nil {
			s.logger.Warn("failed to save snapshot",
				zap.String("visit_id", visitID),
				zap.Int("version", snap.Version),
				zap.Error(err))
			return
		}
		s.logger.Info("compacted history events into snapshot",
			zap.String("visit_id", visitID),
			zap.Int("version", snap.Version),
			zap.Int("event_count", snap.EventCount))
	}
}

func (s *HistoryService) resolveActorName(ctx context.Context, actorID string) string {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil || user == nil {
		s.logger.Debug("could not resolve actor name", zap.String("actor_id", actorID))
		return "Unknown"
	}
	return user.Name()
}

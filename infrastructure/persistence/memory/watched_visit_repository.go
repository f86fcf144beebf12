package memory

import (
	"context"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/visit"

	"go.uber.org/zap"
)

// VisitCollection is the change feed collection visit watchers subscribe to.
const VisitCollection = "VISIT"

// WatchedVisitRepository decorates a visit repository so every write
// republishes the affected day's result set on the change feed. Watchers
// (the local live timeline) see the same day-changed signal the WebSocket
// broadcast carries in the deployed setup.
type WatchedVisitRepository struct {
	ports.VisitRepository
	feed   *ChangeFeed
	logger *zap.Logger
}

// NewWatchedVisitRepository wraps a visit repository with change feed
// notifications.
func NewWatchedVisitRepository(inner ports.VisitRepository, feed *ChangeFeed, logger *zap.Logger) *WatchedVisitRepository {
	return &WatchedVisitRepository{VisitRepository: inner, feed: feed, logger: logger}
}

// Save persists the visit and notifies watchers of its day.
func (r *WatchedVisitRepository) Save(ctx context.Context, v *visit.Visit) error {
	if err := r.VisitRepository.Save(ctx, v); err != nil {
		return err
	}
	r.notifyDay(ctx, v.DayKey())
	return nil
}

// UpdateOrder persists the order key and notifies watchers of the
// visit's day.
func (r *WatchedVisitRepository) UpdateOrder(ctx context.Context, visitID string, order int) error {
	if err := r.VisitRepository.UpdateOrder(ctx, visitID, order); err != nil {
		return err
	}
	v, err := r.VisitRepository.GetByID(ctx, visitID)
	if err != nil {
		r.logger.Warn("failed to resolve day for change notification",
			zap.String("visit_id", visitID), zap.Error(err))
		return nil
	}
	r.notifyDay(ctx, v.DayKey())
	return nil
}

// notifyDay publishes the day's current result set. Notification is best
// effort; a failed reload never fails the write that triggered it.
func (r *WatchedVisitRepository) notifyDay(ctx context.Context, day string) {
	visits, err := r.VisitRepository.ListByDay(ctx, day)
	if err != nil {
		r.logger.Warn("failed to load day for change notification",
			zap.String("day", day), zap.Error(err))
		return
	}
	docs := make([]ports.Document, 0, len(visits))
	for _, v := range visits {
		docs = append(docs, visitDocument(v))
	}
	r.feed.Notify(VisitCollection, docs)
}

func visitDocument(v *visit.Visit) ports.Document {
	return ports.Document{
		"ID":              v.ID,
		"Day":             v.DayKey(),
		"InstitutionID":   v.InstitutionID,
		"InstitutionName": v.InstitutionName,
		"Status":          string(v.Status),
		"Order":           v.Order,
		"UpdatedAt":       v.UpdatedAt,
	}
}

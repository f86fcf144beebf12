package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/events"
	"ccivisits-backend/domain/ordering"
	"ccivisits-backend/domain/visit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentOrderWrites caps the fan-out of per-visit order writes
// issued by a single commit.
const maxConcurrentOrderWrites = 8

// daySession pairs a working list with the order values that were
// persisted when the session started.
type daySession struct {
	list      *ordering.WorkingList
	persisted map[string]int
}

// ReorderService manages per-day move-mode sessions. A session survives a
// cancelled drag; it ends only on commit or an explicit discard. Commits
// made while offline are queued and replayed on reconnect.
type ReorderService struct {
	visitRepo    ports.VisitRepository
	queue        ports.PendingOrderQueue
	connectivity ports.Connectivity
	eventBus     ports.EventBus
	logger       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*daySession
}

func NewReorderService(
	visitRepo ports.VisitRepository,
	queue ports.PendingOrderQueue,
	connectivity ports.Connectivity,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *ReorderService {
	return &ReorderService{
		visitRepo:    visitRepo,
		queue:        queue,
		connectivity: connectivity,
		eventBus:     eventBus,
		logger:       logger,
		sessions:     make(map[string]*daySession),
	}
}

// StartSession enters move mode for a day, seeding the working list from
// the current display order. A day that already has a session resumes it
// as left, so leaving move mode without committing keeps the in-progress
// arrangement; Discard is the explicit way back to the persisted order.
func (s *ReorderService) StartSession(ctx context.Context, day string) ([]string, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[day]; ok {
		ids := sess.list.IDs()
		s.mu.Unlock()
		return ids, nil
	}
	s.mu.Unlock()

	visits, err := s.visitRepo.ListByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits for day %s: %w", day, err)
	}
	SortByDisplayOrder(visits)

	ids := make([]string, 0, len(visits))
	persisted := make(map[string]int, len(visits))
	for _, v := range visits {
		ids = append(ids, v.ID)
		persisted[v.ID] = v.Order
	}

	s.mu.Lock()
	s.sessions[day] = &daySession{
		list:      ordering.NewWorkingList(day, ids),
		persisted: persisted,
	}
	s.mu.Unlock()

	return ids, nil
}

// BeginDrag marks a visit as being dragged within a day's session.
func (s *ReorderService) BeginDrag(day, visitID string) error {
	sess, err := s.session(day)
	if err != nil {
		return err
	}
	return sess.list.BeginDrag(visitID)
}

// DragOver moves the dragged visit to the hovered target's position and
// returns the updated sequence.
func (s *ReorderService) DragOver(day, targetID string) ([]string, error) {
	sess, err := s.session(day)
	if err != nil {
		return nil, err
	}
	if err := sess.list.DragOver(targetID); err != nil {
		return nil, err
	}
	return sess.list.IDs(), nil
}

// Drop ends the current drag. The session and its arrangement remain; the
// user may keep dragging or commit later.
func (s *ReorderService) Drop(day string) error {
	sess, err := s.session(day)
	if err != nil {
		return err
	}
	sess.list.Drop()
	return nil
}

// Discard abandons a day's session without writing anything.
func (s *ReorderService) Discard(day string) {
	s.mu.Lock()
	delete(s.sessions, day)
	s.mu.Unlock()
}

// Commit writes the changed order keys for a day and ends its session.
// Offline, the batch is queued for replay instead of written. The session
// is cleared in both cases.
func (s *ReorderService) Commit(ctx context.Context, day, userID string) (map[string]int, error) {
	s.mu.Lock()
	sess, ok := s.sessions[day]
	if ok {
		delete(s.sessions, day)
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no reorder session for day %s", day)
	}

	changed := ordering.ChangedOrders(sess.list.FinalOrders(), sess.persisted)
	if len(changed) == 0 {
		s.logger.Debug("order commit produced no changes", zap.String("day", day))
		return changed, nil
	}

	if _, err := s.CommitOrders(ctx, day, userID, changed); err != nil {
		return nil, err
	}
	return changed, nil
}

// CommitOrders writes a batch of changed order keys for a day, queueing the
// batch for replay when offline. It reports whether the commit was deferred.
func (s *ReorderService) CommitOrders(ctx context.Context, day, userID string, orders map[string]int) (bool, error) {
	if len(orders) == 0 {
		return false, nil
	}

	deferred := !s.connectivity.Online()
	if deferred {
		commit := ports.OrderCommit{Day: day, UserID: userID, Orders: orders}
		if err := s.queue.Enqueue(ctx, commit); err != nil {
			return false, fmt.Errorf("failed to queue offline order commit: %w", err)
		}
		s.logger.Info("queued order commit for replay",
			zap.String("day", day),
			zap.Int("changed", len(orders)))
	} else {
		if err := s.writeOrders(ctx, orders); err != nil {
			return false, err
		}
		s.logger.Info("committed visit order",
			zap.String("day", day),
			zap.Int("changed", len(orders)))
	}

	event := events.NewOrderCommitted(day, userID, orders, deferred, time.Now())
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish order committed event",
			zap.String("day", day), zap.Error(err))
	}
	return deferred, nil
}

// FlushPending replays queued offline commits. Commits whose writes still
// fail are put back on the queue. Safe to call on every reconnect and at
// startup.
func (s *ReorderService) FlushPending(ctx context.Context) error {
	pending, err := s.queue.DrainAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to drain pending order queue: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	var failed int
	for _, commit := range pending {
		if err := s.writeOrders(ctx, commit.Orders); err != nil {
			s.logger.Warn("replay of queued order commit failed",
				zap.String("day", commit.Day), zap.Error(err))
			if reqErr := s.queue.Requeue(ctx, commit); reqErr != nil {
				s.logger.Error("failed to requeue order commit",
					zap.String("day", commit.Day), zap.Error(reqErr))
			}
			failed++
			continue
		}
		event := events.NewOrderCommitted(commit.Day, commit.UserID, commit.Orders, false, time.Now())
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish replayed order event",
				zap.String("day", commit.Day), zap.Error(err))
		}
	}

	s.logger.Info("flushed pending order commits",
		zap.Int("replayed", len(pending)-failed),
		zap.Int("requeued", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d queued order commits failed to replay", failed, len(pending))
	}
	return nil
}

func (s *ReorderService) writeOrders(ctx context.Context, orders map[string]int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOrderWrites)
	for id, order := range orders {
		id, order := id, order
		g.Go(func() error {
			if err := s.visitRepo.UpdateOrder(ctx, id, order); err != nil {
				return fmt.Errorf("failed to update order for visit %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *ReorderService) session(day string) (*daySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[day]
	if !ok {
		return nil, fmt.Errorf("no reorder session for day %s", day)
	}
	return sess, nil
}

// SortByDisplayOrder sorts visits by their order key ascending, falling
// back to creation time for visits that have never been manually ordered.
func SortByDisplayOrder(visits []*visit.Visit) {
	sort.SliceStable(visits, func(i, j int) bool {
		a, b := visits[i], visits[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

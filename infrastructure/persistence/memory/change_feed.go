package memory

import (
	"context"
	"sync"

	"ccivisits-backend/application/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangeFeed is the in-process ports.Watcher. Writers call Notify after a
// successful store write; each matching subscription re-receives the new
// result set. Per subscription, handlers run on a dedicated goroutine fed
// by a channel, so they fire in arrival order and never concurrently.
type ChangeFeed struct {
	mu     sync.Mutex
	subs   map[string]*subscription
	logger *zap.Logger
}

type subscription struct {
	collection string
	filters    []ports.Filter
	deliveries chan []ports.Document
	done       chan struct{}
}

// NewChangeFeed creates an empty change feed.
func NewChangeFeed(logger *zap.Logger) *ChangeFeed {
	return &ChangeFeed{
		subs:   make(map[string]*subscription),
		logger: logger,
	}
}

// Watch subscribes to changes on a collection.
func (f *ChangeFeed) Watch(ctx context.Context, collection string, filters []ports.Filter, handler ports.ChangeHandler) (ports.CancelFunc, error) {
	sub := &subscription{
		collection: collection,
		filters:    filters,
		deliveries: make(chan []ports.Document, 16),
		done:       make(chan struct{}),
	}
	id := uuid.New().String()

	f.mu.Lock()
	f.subs[id] = sub
	f.mu.Unlock()

	go func() {
		for {
			select {
			case docs := <-sub.deliveries:
				handler(docs)
			case <-sub.done:
				return
			case <-ctx.Done():
				f.remove(id)
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.remove(id)
			close(sub.done)
		})
	}
	return cancel, nil
}

// Notify delivers a collection's new result set to every subscription
// whose filters it matches. A subscriber that cannot keep up loses the
// oldest undelivered set; only the latest state matters to watchers.
func (f *ChangeFeed) Notify(collection string, docs []ports.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.collection != collection {
			continue
		}
		matched := filterDocuments(docs, sub.filters)
		select {
		case sub.deliveries <- matched:
		default:
			select {
			case <-sub.deliveries:
			default:
			}
			select {
			case sub.deliveries <- matched:
			default:
				f.logger.Warn("dropping change notification",
					zap.String("collection", collection))
			}
		}
	}
}

func (f *ChangeFeed) remove(id string) {
	f.mu.Lock()
	delete(f.subs, id)
	f.mu.Unlock()
}

func filterDocuments(docs []ports.Document, filters []ports.Filter) []ports.Document {
	if len(filters) == 0 {
		return docs
	}
	matched := make([]ports.Document, 0, len(docs))
	for _, doc := range docs {
		if matchesAll(doc, filters) {
			matched = append(matched, doc)
		}
	}
	return matched
}

func matchesAll(doc ports.Document, filters []ports.Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

// matches evaluates one filter. Equality compares values directly; the
// ordered operators only apply to numeric fields here.
func matches(doc ports.Document, f ports.Filter) bool {
	value, ok := doc[f.Field]
	if !ok {
		return false
	}
	if f.Op == ports.FilterEq {
		return value == f.Value
	}

	a, aok := asFloat(value)
	b, bok := asFloat(f.Value)
	if !aok || !bok {
		return false
	}
	switch f.Op {
	case ports.FilterLt:
		return a < b
	case ports.FilterLte:
		return a <= b
	case ports.FilterGt:
		return a > b
	case ports.FilterGte:
		return a >= b
	default:
		return false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

package ports

import "context"

// Document is the flexible wire-side record shape. Typed repositories
// convert between this and the strict internal model at their boundary.
type Document map[string]interface{}

// FilterOp is a comparison operator for store queries.
type FilterOp string

const (
	FilterEq  FilterOp = "=="
	FilterLt  FilterOp = "<"
	FilterLte FilterOp = "<="
	FilterGt  FilterOp = ">"
	FilterGte FilterOp = ">="
)

// Filter restricts a query to documents matching a field comparison.
type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

// Ordering sorts query results by a field.
type Ordering struct {
	Field      string
	Descending bool
}

// BatchWrite is one partial update within a batch. Batches carry no
// cross-document atomicity guarantee beyond all-or-nothing issuance.
type BatchWrite struct {
	Collection string
	ID         string
	Fields     Document
}

// DocumentStore is the generic contract over the hosted document
// database, consumed by code that does not need a typed repository.
type DocumentStore interface {
	// Get retrieves one document; a missing document yields a not-found
	// error, not a nil success.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns all documents matching the filters, sorted.
	Query(ctx context.Context, collection string, filters []Filter, order *Ordering) ([]Document, error)

	// Update applies a partial field update to one document.
	Update(ctx context.Context, collection, id string, fields Document) error

	// BatchUpdate issues a set of partial updates together.
	BatchUpdate(ctx context.Context, writes []BatchWrite) error
}

// CancelFunc tears down a live subscription. Safe to call more than once.
type CancelFunc func()

// ChangeHandler receives the new result set for a watched query.
// For one subscription, handlers fire in arrival order and never
// concurrently with each other.
type ChangeHandler func(docs []Document)

// Watcher is the live-subscription side of the document store.
type Watcher interface {
	// Watch subscribes to changes on a collection; the handler fires
	// whenever a matching document changes, and the returned CancelFunc
	// ends the subscription.
	Watch(ctx context.Context, collection string, filters []Filter, handler ChangeHandler) (CancelFunc, error)
}

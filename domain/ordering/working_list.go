// Package ordering implements the client-local visit reordering model:
// a per-day working list of visit IDs that a user rearranges via drag
// operations, committed as a minimal batch of order-key writes.
package ordering

import "errors"

// OrderSpacing is the gap between assigned order keys. Spacing of 1000
// leaves room for future manual insertions without a full renumber.
const OrderSpacing = 1000

var ErrUnknownID = errors.New("id not in working list")

// WorkingList holds the in-progress manual arrangement for one day.
// While move mode is active this list is the sole source of display order;
// outside move mode the persisted order field is authoritative.
type WorkingList struct {
	dayKey   string
	ids      []string
	dragging string
}

// NewWorkingList seeds a working list from the current display order.
func NewWorkingList(dayKey string, ids []string) *WorkingList {
	cp := make([]string, len(ids))
	copy(cp, ids)
	return &WorkingList{dayKey: dayKey, ids: cp}
}

// DayKey returns the day this list belongs to.
func (l *WorkingList) DayKey() string { return l.dayKey }

// IDs returns a copy of the current sequence.
func (l *WorkingList) IDs() []string {
	cp := make([]string, len(l.ids))
	copy(cp, l.ids)
	return cp
}

// Len returns the number of items in the list.
func (l *WorkingList) Len() int { return len(l.ids) }

// BeginDrag marks an item as the one currently being dragged.
func (l *WorkingList) BeginDrag(id string) error {
	if l.indexOf(id) < 0 {
		return ErrUnknownID
	}
	l.dragging = id
	return nil
}

// Dragging returns the ID currently being dragged, if any.
func (l *WorkingList) Dragging() string { return l.dragging }

// DragOver moves the dragged item to the position of the hovered target.
// It runs on every drag-over event, not just on drop, so the list always
// reflects what the user sees. Dragging an item over itself is a no-op.
func (l *WorkingList) DragOver(targetID string) error {
	if l.dragging == "" || l.dragging == targetID {
		return nil
	}
	from := l.indexOf(l.dragging)
	if from < 0 || l.indexOf(targetID) < 0 {
		return ErrUnknownID
	}

	// Splice out first; the insertion point is the target's index in the
	// remaining sequence, so the dragged item lands at the hovered index.
	id := l.ids[from]
	l.ids = append(l.ids[:from], l.ids[from+1:]...)
	to := l.indexOf(targetID)
	l.ids = append(l.ids[:to], append([]string{id}, l.ids[to:]...)...)
	return nil
}

// Drop clears the transient dragging pointer. The position was already
// committed to the list by the preceding drag-over updates.
func (l *WorkingList) Drop() {
	l.dragging = ""
}

// FinalOrders assigns the committed order key for every item:
// (index+1) * OrderSpacing over the final sequence.
func (l *WorkingList) FinalOrders() map[string]int {
	orders := make(map[string]int, len(l.ids))
	for i, id := range l.ids {
		orders[id] = (i + 1) * OrderSpacing
	}
	return orders
}

func (l *WorkingList) indexOf(id string) int {
	for i, v := range l.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// ChangedOrders diffs the computed final orders against the currently
// persisted ones and keeps only entries whose absolute value changed.
// Running a commit twice with no intervening drag therefore issues zero
// writes the second time.
func ChangedOrders(final, persisted map[string]int) map[string]int {
	changed := make(map[string]int)
	for id, order := range final {
		if persisted[id] != order {
			changed[id] = order
		}
	}
	return changed
}

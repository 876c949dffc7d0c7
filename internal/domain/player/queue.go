package player

import "github.com/samber/lo"

// Queue is the ordered list of items waiting to play.
type Queue struct {
	items []*Item
}

// Len returns the number of queued items.
func (q *Queue) Len() int { return len(q.items) }

// Append adds items at the tail.
func (q *Queue) Append(items ...*Item) {
	q.items = append(q.items, items...)
}

// PushFront inserts an item at the head.
func (q *Queue) PushFront(item *Item) {
	q.items = append([]*Item{item}, q.items...)
}

// PopFront removes and returns the head, or nil if the queue is empty.
func (q *Queue) PopFront() *Item {
	if len(q.items) == 0 {
		return nil
	}
	head := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return head
}

// IndexOf returns the position of item, compared by identity, or -1.
func (q *Queue) IndexOf(item *Item) int {
	for i, it := range q.items {
		if it == item {
			return i
		}
	}
	return -1
}

// Find returns the queued item with the given id.
func (q *Queue) Find(id string) (*Item, bool) {
	return lo.Find(q.items, func(it *Item) bool { return it.ID == id })
}

// RemoveAt removes the item at pos.
func (q *Queue) RemoveAt(pos int) (*Item, error) {
	if pos < 0 || pos >= len(q.items) {
		return nil, ErrIndexOutOfRange
	}
	item := q.items[pos]
	q.items = append(q.items[:pos], q.items[pos+1:]...)
	return item, nil
}

// Move moves the item at from so that it ends up at index to.
func (q *Queue) Move(from, to int) error {
	n := len(q.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	item := q.items[from]
	q.items = append(q.items[:from], q.items[from+1:]...)
	q.items = append(q.items[:to], append([]*Item{item}, q.items[to:]...)...)
	return nil
}

// Clear drops every queued item.
func (q *Queue) Clear() {
	q.items = nil
}

// Items returns a copy of the queued items in play order.
func (q *Queue) Items() []*Item {
	return append([]*Item(nil), q.items...)
}

// History is the stack of previously current items.
type History struct {
	items []*Item
}

// Len returns the stack depth.
func (h *History) Len() int { return len(h.items) }

// Push puts item on top.
func (h *History) Push(item *Item) {
	h.items = append(h.items, item)
}

// Pop removes and returns the top item, or nil when empty.
func (h *History) Pop() *Item {
	n := len(h.items)
	if n == 0 {
		return nil
	}
	top := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	return top
}

// Contains reports whether item is on the stack.
func (h *History) Contains(item *Item) bool {
	return lo.Contains(h.items, item)
}

// Items returns the stack bottom first.
func (h *History) Items() []*Item {
	return append([]*Item(nil), h.items...)
}

func infos(items []*Item) []ItemInfo {
	return lo.Map(items, func(it *Item, _ int) ItemInfo { return it.Info() })
}

package cache

// entry is a node of the recency list. The head is the most recently used
// entry and the tail the least recently used one.
type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
}

// recency is an intrusive doubly-linked list. It is not synchronized.
type recency[K comparable, V any] struct {
	head, tail *entry[K, V]
	len        int
}

// pushFront links e as the most recently used entry.
func (l *recency[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.len++
}

// touch moves e to the front.
func (l *recency[K, V]) touch(e *entry[K, V]) {
	if e == l.head {
		return
	}
	l.unlink(e)
	l.pushFront(e)
}

// unlink removes e from the list.
func (l *recency[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	l.len--
}

// oldest returns the least recently used entry, or nil.
func (l *recency[K, V]) oldest() *entry[K, V] { return l.tail }

func (l *recency[K, V]) clear() {
	l.head, l.tail, l.len = nil, nil, 0
}

package canvas2d

// lruNode is a node in an intrusive doubly linked LRU list. The owner keeps
// a pointer to its node so touch and removal are O(1).
type lruNode[T any] struct {
	value T
	prev  *lruNode[T]
	next  *lruNode[T]
	list  *lruList[T]
}

// lruList is a doubly linked list ordered by recency. The head is the most
// recently used entry, the tail the least recently used. Not safe for
// concurrent use.
type lruList[T any] struct {
	head *lruNode[T]
	tail *lruNode[T]
	len  int
}

// Len returns the number of nodes in the list.
func (l *lruList[T]) Len() int {
	return l.len
}

// PushFront inserts value as the most recently used entry and returns its node.
func (l *lruList[T]) PushFront(value T) *lruNode[T] {
	node := &lruNode[T]{value: value}
	l.linkFront(node)
	return node
}

// MoveToFront marks node as most recently used.
func (l *lruList[T]) MoveToFront(node *lruNode[T]) {
	if node == nil || node.list != l || node == l.head {
		return
	}
	l.unlink(node)
	l.linkFront(node)
}

// Remove unlinks node from the list. Removing a node that is not in this
// list is a no-op.
func (l *lruList[T]) Remove(node *lruNode[T]) {
	if node == nil || node.list != l {
		return
	}
	l.unlink(node)
}

// Back returns the least recently used node, or nil when empty.
func (l *lruList[T]) Back() *lruNode[T] {
	return l.tail
}

// Front returns the most recently used node, or nil when empty.
func (l *lruList[T]) Front() *lruNode[T] {
	return l.head
}

// Clear drops every node.
func (l *lruList[T]) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next, n.list = nil, nil, nil
		n = next
	}
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *lruList[T]) linkFront(node *lruNode[T]) {
	node.list = l
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	} else {
		l.tail = node
	}
	l.head = node
	l.len++
}

func (l *lruList[T]) unlink(node *lruNode[T]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.list = nil
	l.len--
}

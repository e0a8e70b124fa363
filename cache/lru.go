package cache

// lruNode is an entry in the recency ring. Nodes carry their key so
// the owning shard can delete the map entry in O(1) on eviction.
type lruNode[K comparable] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList tracks entry recency as a circular list around a sentinel:
// sentinel.next is the most recently used entry, sentinel.prev the
// least. Not safe for concurrent use; the owning shard locks around it.
type lruList[K comparable] struct {
	sentinel lruNode[K]
	size     int
}

func newLRUList[K comparable]() *lruList[K] {
	l := &lruList[K]{}
	l.sentinel.prev = &l.sentinel
	l.sentinel.next = &l.sentinel
	return l
}

func (l *lruList[K]) Len() int { return l.size }

// PushFront records key as the most recently used entry and returns
// its node for later MoveToFront and Remove calls.
func (l *lruList[K]) PushFront(key K) *lruNode[K] {
	node := &lruNode[K]{key: key}
	l.linkFront(node)
	l.size++
	return node
}

// MoveToFront marks an entry as most recently used. Nil and unlinked
// nodes are ignored.
func (l *lruList[K]) MoveToFront(node *lruNode[K]) {
	if node == nil || node.next == nil || l.sentinel.next == node {
		return
	}
	node.prev.next = node.next
	node.next.prev = node.prev
	l.linkFront(node)
}

// Remove unlinks an entry. Removing nil or an already-removed node is
// a no-op.
func (l *lruList[K]) Remove(node *lruNode[K]) {
	if node == nil || node.next == nil {
		return
	}
	node.prev.next = node.next
	node.next.prev = node.prev
	node.prev, node.next = nil, nil
	l.size--
}

// RemoveOldest evicts the least recently used entry and returns its
// key. The second result is false when the list is empty.
func (l *lruList[K]) RemoveOldest() (K, bool) {
	if l.size == 0 {
		var zero K
		return zero, false
	}
	node := l.sentinel.prev
	l.Remove(node)
	return node.key, true
}

// Clear drops every entry.
func (l *lruList[K]) Clear() {
	l.sentinel.prev = &l.sentinel
	l.sentinel.next = &l.sentinel
	l.size = 0
}

func (l *lruList[K]) linkFront(node *lruNode[K]) {
	node.prev = &l.sentinel
	node.next = l.sentinel.next
	node.prev.next = node
	node.next.prev = node
}

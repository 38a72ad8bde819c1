package queue

// pendingQueue is an insertion-ordered set of job keys. Duplicates are
// rejected at Push, so a key is queued at most once.
type pendingQueue struct {
	keys  []string
	index map[string]struct{}
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{index: make(map[string]struct{})}
}

func (q *pendingQueue) Len() int {
	return len(q.keys)
}

func (q *pendingQueue) Contains(key string) bool {
	_, ok := q.index[key]

	return ok
}

// Push appends the key, returning false if it was already queued.
func (q *pendingQueue) Push(key string) bool {
	if q.Contains(key) {
		return false
	}

	q.keys = append(q.keys, key)
	q.index[key] = struct{}{}

	return true
}

// Pop removes and returns the oldest key.
func (q *pendingQueue) Pop() (string, bool) {
	if len(q.keys) == 0 {
		return "", false
	}

	key := q.keys[0]
	q.keys = q.keys[1:]
	delete(q.index, key)

	return key, true
}

// Remove deletes the key wherever it sits in the queue.
func (q *pendingQueue) Remove(key string) bool {
	if !q.Contains(key) {
		return false
	}

	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)

			break
		}
	}

	delete(q.index, key)

	return true
}

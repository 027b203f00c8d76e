// queue package

package queue

// InMemoryQueue implements an in-memory queue on a buffered channel.
// Producers never block: when the buffer is full Enqueue fails.
type InMemoryQueue struct {
	ch chan interface{}
}

var _ Queue = &InMemoryQueue{}

// NewInMemoryQueue creates a new queue holding at most size items.
func NewInMemoryQueue(size int) *InMemoryQueue {
	return &InMemoryQueue{
		ch: make(chan interface{}, size),
	}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue) Enqueue(item interface{}) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue) Size() int {
	return len(q.ch)
}

// ReadAllMessages reads all pending messages in the queue without blocking.
func (q *InMemoryQueue) ReadAllMessages() ([]interface{}, error) {
	var messages []interface{}
	for {
		select {
		case item := <-q.ch:
			messages = append(messages, item)
		default:
			return messages, nil
		}
	}
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue) ClearQueue() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

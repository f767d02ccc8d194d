package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrQueueClosed reports a push or pop against a queue that has been closed
// and fully drained.
var ErrQueueClosed = errors.New("queue is closed")

// ErrQueueTimeout reports a pop that waited out its deadline on an open but
// empty queue.
var ErrQueueTimeout = errors.New("queue poll timed out")

type envelope[T any] struct {
	value    T
	sentinel bool
}

// Queue is a bounded FIFO handoff between one producer stage and one consumer
// stage. Push blocks while the queue is full, which is how downstream stages
// impose backpressure on upstream ones.
type Queue[T any] struct {
	items chan envelope[T]
	done  chan struct{}
	once  sync.Once
}

// NewQueue constructs a queue holding at most capacity items.
func NewQueue[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	return &Queue[T]{
		items: make(chan envelope[T], capacity),
		done:  make(chan struct{}),
	}, nil
}

// Push appends v, blocking while the queue is full. It returns ErrQueueClosed
// once Close has been called, including for producers blocked mid-push.
func (q *Queue[T]) Push(v T) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.items <- envelope[T]{value: v}:
		return nil
	case <-q.done:
		return ErrQueueClosed
	}
}

// Pop removes the oldest item, waiting up to wait when the queue is empty.
// Items already queued are drained before shutdown is observed, so consumers
// see everything pushed before Close. An empty open queue yields
// ErrQueueTimeout after wait; an empty closed queue yields ErrQueueClosed.
func (q *Queue[T]) Pop(wait time.Duration) (T, error) {
	var zero T

	// Drain before consulting done so close does not drop queued items.
	select {
	case env := <-q.items:
		if env.sentinel {
			return zero, ErrQueueClosed
		}
		return env.value, nil
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case env := <-q.items:
		if env.sentinel {
			return zero, ErrQueueClosed
		}
		return env.value, nil
	case <-q.done:
		select {
		case env := <-q.items:
			if env.sentinel {
				return zero, ErrQueueClosed
			}
			return env.value, nil
		default:
			return zero, ErrQueueClosed
		}
	case <-timer.C:
		return zero, ErrQueueTimeout
	}
}

// Len reports how many items are currently queued.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Close marks the queue closed. It is safe to call more than once. Blocked
// producers are released with ErrQueueClosed and consumers drain what remains
// before seeing the same error.
func (q *Queue[T]) Close() {
	q.once.Do(func() {
		close(q.done)
		// Wake a consumer that raced past the drain check. Skipped when
		// the buffer is full; done covers that case.
		select {
		case q.items <- envelope[T]{sentinel: true}:
		default:
		}
	})
}

package orchestration

import (
	"sync"

	"github.com/koscakluka/ema-tutor/core/events"
)

// eventEmitter queues events and hands them to the handler on its own
// goroutine, so emitting never blocks and never runs the handler while the
// tutor holds its lock.
type eventEmitter struct {
	handler events.Handler

	mu     sync.Mutex
	queue  []events.Event
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newEventEmitter(handler events.Handler) *eventEmitter {
	e := &eventEmitter{
		handler: handler,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if handler == nil {
		close(e.done)
		return e
	}

	go e.run()
	return e
}

func (e *eventEmitter) emit(event events.Event) {
	if e == nil || e.handler == nil {
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue = append(e.queue, event)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *eventEmitter) run() {
	defer close(e.done)
	for range e.wake {
		for {
			e.mu.Lock()
			batch := e.queue
			e.queue = nil
			closed := e.closed
			e.mu.Unlock()

			if len(batch) == 0 {
				if closed {
					return
				}
				break
			}
			for _, event := range batch {
				e.deliver(event)
			}
		}
	}
}

func (e *eventEmitter) deliver(event events.Event) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("event handler panicked", "kind", event.Kind(), "panic", recovered)
		}
	}()
	e.handler(event)
}

// close delivers everything already queued and stops the emitter.
func (e *eventEmitter) close() {
	if e.handler == nil {
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	<-e.done
}

package notify

import (
	"container/list"
	"errors"
	"sync"

	events "github.com/docker/go-events"
	"github.com/sirupsen/logrus"
)

// errQueueClosed is returned by eventQueue.Write after Close.
var errQueueClosed = errors.New("notify: event queue closed")

// eventQueue accepts events for asynchronous delivery to a sink. It is
// unbounded and never blocks the caller, so a slow or unreachable webhook
// cannot stall a publish or sync.
type eventQueue struct {
	sink   events.Sink
	events *list.List
	cond   *sync.Cond
	mu     sync.Mutex
	closed bool
}

func newEventQueue(sink events.Sink) *eventQueue {
	eq := &eventQueue{
		sink:   sink,
		events: list.New(),
	}
	eq.cond = sync.NewCond(&eq.mu)
	go eq.run()
	return eq
}

func (eq *eventQueue) Write(event events.Event) error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if eq.closed {
		return errQueueClosed
	}
	eq.events.PushBack(event)
	eq.cond.Signal()
	return nil
}

func (eq *eventQueue) Close() error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if eq.closed {
		return nil
	}
	eq.closed = true
	eq.cond.Signal()
	return nil
}

func (eq *eventQueue) run() {
	for {
		event := eq.next()
		if event == nil {
			return
		}
		if err := eq.sink.Write(event); err != nil {
			logrus.WithError(err).Warn("notify: dropping event, webhook delivery failed")
		}
	}
}

func (eq *eventQueue) next() events.Event {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	for eq.events.Len() < 1 {
		if eq.closed {
			return nil
		}
		eq.cond.Wait()
	}

	front := eq.events.Front()
	event := front.Value.(events.Event)
	eq.events.Remove(front)
	return event
}

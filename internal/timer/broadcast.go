package timer

import "sync"

const subscriberBuffer = 16

// broadcaster fans state snapshots out to subscribers. A subscriber that falls
// behind loses its oldest pending snapshot, never the newest one.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[chan State]struct{}
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan State]struct{})}
}

func (b *broadcaster) subscribe(initial State) (<-chan State, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan State, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- initial
	b.subs[ch] = struct{}{}

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
}

func (b *broadcaster) publish(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// full: drop the oldest snapshot to make room
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

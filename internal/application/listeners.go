package application

import "sync"

// listeners is an ordered subscriber set. notify iterates over a snapshot, so
// a callback may unsubscribe itself or others while being notified.
//
// Delivery is serialized: one goroutine delivers at a time and reads the
// current value for every round, so the last value a subscriber sees is the
// state after the last change. A notify that arrives while another goroutine
// is delivering, or from inside a callback, is folded into the next round.
type listeners[T any] struct {
	mu         sync.Mutex
	nextID     int
	order      []int
	fns        map[int]func(T)
	delivering bool
	dirty      bool
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = map[int]func(T){}
	}
	l.nextID++
	id := l.nextID
	l.fns[id] = fn
	l.order = append(l.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *listeners[T]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.fns, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *listeners[T]) notify(current func() T) {
	l.mu.Lock()
	l.dirty = true
	if l.delivering {
		l.mu.Unlock()
		return
	}
	l.delivering = true
	l.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			l.mu.Lock()
			l.delivering = false
			l.mu.Unlock()
		}
	}()

	for l.nextRound() {
		value := current()
		for _, fn := range l.snapshot() {
			fn(value)
		}
	}
	finished = true
}

// nextRound clears the dirty flag, or ends delivery when nothing changed
// since the last round.
func (l *listeners[T]) nextRound() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		l.delivering = false
		return false
	}
	l.dirty = false
	return true
}

func (l *listeners[T]) snapshot() []func(T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fns := make([]func(T), 0, len(l.order))
	for _, id := range l.order {
		fns = append(fns, l.fns[id])
	}
	return fns
}

func (l *listeners[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

package application

import (
	"sync"
	"time"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
	"github.com/google/uuid"
)

const ToastLifetime = 5 * time.Second

// ToastBus keeps the ordered list of visible toasts. Every toast removes
// itself after ToastLifetime; identical messages are never merged.
type ToastBus struct {
	clock  ports.Clock
	mu     sync.Mutex
	toasts []domain.Toast
	timers map[string]ports.Timer
	subs   listeners[[]domain.Toast]
}

func NewToastBus(clock ports.Clock) *ToastBus {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &ToastBus{clock: clock, timers: map[string]ports.Timer{}}
}

func (b *ToastBus) Show(message string, kind domain.ToastKind) string {
	if !kind.Valid() {
		kind = domain.ToastInfo
	}

	toast := domain.Toast{
		ID:        "toast-" + uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: b.clock.Now(),
	}

	b.mu.Lock()
	b.toasts = append(b.toasts, toast)
	b.mu.Unlock()

	b.subs.notify(b.Toasts)

	// Registered after notify so a subscriber that removes the toast
	// synchronously never leaves a live timer behind.
	timer := b.clock.AfterFunc(ToastLifetime, func() { b.Remove(toast.ID) })
	b.mu.Lock()
	if b.indexLocked(toast.ID) >= 0 {
		b.timers[toast.ID] = timer
	} else {
		timer.Stop()
	}
	b.mu.Unlock()

	return toast.ID
}

func (b *ToastBus) Success(message string) string { return b.Show(message, domain.ToastSuccess) }
func (b *ToastBus) Error(message string) string   { return b.Show(message, domain.ToastError) }
func (b *ToastBus) Warning(message string) string { return b.Show(message, domain.ToastWarning) }
func (b *ToastBus) Info(message string) string    { return b.Show(message, domain.ToastInfo) }

// Remove drops the toast with id. Unknown ids are ignored and do not notify.
func (b *ToastBus) Remove(id string) {
	b.mu.Lock()
	idx := b.indexLocked(id)
	if idx < 0 {
		b.mu.Unlock()
		return
	}
	b.toasts = append(b.toasts[:idx:idx], b.toasts[idx+1:]...)
	if timer, ok := b.timers[id]; ok {
		timer.Stop()
		delete(b.timers, id)
	}
	b.mu.Unlock()

	b.subs.notify(b.Toasts)
}

func (b *ToastBus) Clear() {
	b.mu.Lock()
	if len(b.toasts) == 0 {
		b.mu.Unlock()
		return
	}
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
	b.toasts = nil
	b.mu.Unlock()

	b.subs.notify(b.Toasts)
}

func (b *ToastBus) Toasts() []domain.Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Subscribe calls fn with the full ordered list after every change.
func (b *ToastBus) Subscribe(fn func([]domain.Toast)) func() {
	return b.subs.add(fn)
}

func (b *ToastBus) indexLocked(id string) int {
	for i, toast := range b.toasts {
		if toast.ID == id {
			return i
		}
	}
	return -1
}

func (b *ToastBus) snapshotLocked() []domain.Toast {
	return append([]domain.Toast{}, b.toasts...)
}

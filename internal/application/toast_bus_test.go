package application

import (
	"strings"
	"testing"
	"time"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toastMessages(toasts []domain.Toast) []string {
	messages := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		messages = append(messages, toast.Message)
	}
	return messages
}

func TestToastExpiresAfterLifetime(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	bus := NewToastBus(clock)

	id := bus.Show("saved", domain.ToastSuccess)
	assert.True(t, strings.HasPrefix(id, "toast-"))
	require.Len(t, bus.Toasts(), 1)
	assert.Equal(t, clock.Now(), bus.Toasts()[0].CreatedAt)

	clock.Advance(ToastLifetime - time.Millisecond)
	assert.Len(t, bus.Toasts(), 1)

	clock.Advance(time.Millisecond)
	assert.Empty(t, bus.Toasts())
}

func TestToastRemoveBeforeTimerMakesTimerNoOp(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(time.Now())
	bus := NewToastBus(clock)

	var notifications int
	bus.Subscribe(func([]domain.Toast) { notifications++ })

	id := bus.Show("x", domain.ToastError)
	bus.Remove(id)
	assert.Empty(t, bus.Toasts())
	assert.Zero(t, clock.Pending())

	clock.Advance(ToastLifetime)
	bus.Remove(id)
	assert.Equal(t, 2, notifications)
}

func TestToastsAreNeverMerged(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(time.Now())
	bus := NewToastBus(clock)

	first := bus.Error("offline")
	clock.Advance(time.Second)
	second := bus.Error("offline")
	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{"offline", "offline"}, toastMessages(bus.Toasts()))

	clock.Advance(ToastLifetime - time.Second)
	require.Len(t, bus.Toasts(), 1)
	assert.Equal(t, second, bus.Toasts()[0].ID)
}

func TestToastSubscribersReceiveFullOrderedList(t *testing.T) {
	t.Parallel()

	bus := NewToastBus(mocks.NewFakeClock(time.Now()))

	var lists [][]string
	unsubscribe := bus.Subscribe(func(toasts []domain.Toast) { lists = append(lists, toastMessages(toasts)) })

	bus.Info("a")
	bus.Warning("b")
	bus.Success("c")
	unsubscribe()
	bus.Info("d")

	assert.Equal(t, [][]string{{"a"}, {"a", "b"}, {"a", "b", "c"}}, lists)
}

func TestToastClear(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(time.Now())
	bus := NewToastBus(clock)
	bus.Info("a")
	bus.Info("b")

	var last []domain.Toast
	bus.Subscribe(func(toasts []domain.Toast) { last = toasts })

	bus.Clear()
	assert.Empty(t, bus.Toasts())
	assert.NotNil(t, last)
	assert.Empty(t, last)
	assert.Zero(t, clock.Pending())
}

func TestToastUnknownKindFallsBackToInfo(t *testing.T) {
	t.Parallel()

	bus := NewToastBus(mocks.NewFakeClock(time.Now()))
	bus.Show("hmm", domain.ToastKind("loud"))
	assert.Equal(t, domain.ToastInfo, bus.Toasts()[0].Kind)
}

func TestToastSubscriberRemovingSynchronouslyLeavesNoTimer(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(time.Now())
	bus := NewToastBus(clock)
	bus.Subscribe(func(toasts []domain.Toast) {
		for _, toast := range toasts {
			bus.Remove(toast.ID)
		}
	})

	bus.Info("flash")
	assert.Empty(t, bus.Toasts())
	assert.Zero(t, clock.Pending())
}

func TestToastConcurrentChangesDeliverCurrentListLast(t *testing.T) {
	t.Parallel()

	bus := NewToastBus(mocks.NewFakeClock(time.Now()))

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var delivered [][]string
	bus.Subscribe(func(toasts []domain.Toast) {
		calls++
		if calls == 1 {
			close(entered)
			<-release
		}
		delivered = append(delivered, toastMessages(toasts))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		bus.Info("a")
	}()

	<-entered
	bus.Info("b")
	close(release)
	<-done

	require.NotEmpty(t, delivered)
	assert.Equal(t, []string{"a", "b"}, delivered[len(delivered)-1])
	assert.Equal(t, toastMessages(bus.Toasts()), delivered[len(delivered)-1])
}

package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingEvent struct{ N int }
type pongEvent struct{ N int }

func TestPublishSubscribe(t *testing.T) {
	Use(New())
	defer Use(nil)

	var pings, pongs []int
	unsub := Subscribe(func(ctx context.Context, e pingEvent) { pings = append(pings, e.N) })
	defer unsub()
	defer Subscribe(func(ctx context.Context, e pongEvent) { pongs = append(pongs, e.N) })()

	ctx := context.Background()
	Publish(ctx, pingEvent{1})
	Publish(ctx, pongEvent{2})
	Publish(ctx, pingEvent{3})

	assert.Equal(t, []int{1, 3}, pings)
	assert.Equal(t, []int{2}, pongs)
}

func TestUnsubscribe(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got int
	unsub := Subscribe(func(ctx context.Context, e pingEvent) { got++ })
	Publish(context.Background(), pingEvent{1})
	unsub()
	Publish(context.Background(), pingEvent{2})

	assert.Equal(t, 1, got)
}

func TestUnsubscribeOutOfOrder(t *testing.T) {
	Use(New())
	defer Use(nil)

	counts := make(map[string]int)
	sub := func(name string) func() {
		return Subscribe(func(ctx context.Context, e pingEvent) { counts[name]++ })
	}
	unsubA := sub("a")
	unsubB := sub("b")
	unsubC := sub("c")
	defer unsubC()

	// Removing an earlier subscriber must not detach a later one, and
	// removing the middle one must detach exactly it.
	unsubA()
	unsubB()
	Publish(context.Background(), pingEvent{1})

	assert.Equal(t, map[string]int{"c": 1}, counts)
}

func TestUnsubscribeIdempotent(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got int
	other := Subscribe(func(ctx context.Context, e pingEvent) { got++ })
	defer other()
	unsub := Subscribe(func(ctx context.Context, e pingEvent) {})
	unsub()
	unsub()

	Publish(context.Background(), pingEvent{1})
	assert.Equal(t, 1, got)
}

func TestPublishWithoutBus(t *testing.T) {
	Use(nil)

	// Must be a no-op, not a panic.
	Publish(context.Background(), pingEvent{1})
	unsub := Subscribe(func(ctx context.Context, e pingEvent) {})
	unsub()
}

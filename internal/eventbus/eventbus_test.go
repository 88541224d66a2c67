package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ n int }
type pong struct{}

func TestPublishDispatchesByType(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var a, b []int
	unsubA := Subscribe(func(_ context.Context, p ping) { a = append(a, p.n) })
	unsubB := Subscribe(func(_ context.Context, p ping) { b = append(b, p.n) })
	pongs := 0
	defer Subscribe(func(context.Context, pong) { pongs++ })()

	Publish(context.Background(), ping{1})
	unsubA()
	Publish(context.Background(), ping{2})
	Publish(context.Background(), pong{})
	unsubB()
	Publish(context.Background(), ping{3})

	require.Equal(t, []int{1}, a)
	require.Equal(t, []int{1, 2}, b)
	require.Equal(t, 1, pongs)
}

func TestPublishWithoutBus(t *testing.T) {
	Use(nil)
	called := false
	Subscribe(func(context.Context, ping) { called = true })()
	Publish(context.Background(), ping{})
	require.False(t, called)
}

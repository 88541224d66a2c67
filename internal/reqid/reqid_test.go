package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	_, ok = FromContext(context.Background())
	require.False(t, ok, "unexpected id in empty context")
}

func TestInvocationInheritsRequestID(t *testing.T) {
	ctx := WithID(context.Background(), "req-1")
	ctx = WithInvocation(ctx, Invocation{Type: "Query", Field: "pet", Arguments: map[string]any{"id": "1"}})

	inv, ok := InvocationFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "req-1", inv.RequestID)
	require.Equal(t, "pet", inv.Field)
	require.Equal(t, "1", inv.Arguments["id"])

	_, ok = InvocationFromContext(context.Background())
	require.False(t, ok)
}

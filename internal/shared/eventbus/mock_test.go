package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afro-class/internal/shared/model"
)

func TestMemoryEventBus(t *testing.T) {
	bus := NewMemoryEventBus()
	ctx := context.Background()

	require.NoError(t, bus.PublishAccountEvent(ctx, model.RoleStudent, NewAccountEvent(AccountRegistered, "p1", "a@x.com")))
	require.NoError(t, bus.PublishAccountEvent(ctx, model.RoleStudent, NewAccountEvent(AccountLoggedIn, "p1", "a@x.com")))

	events, err := bus.ListAccountEvents(ctx, model.RoleStudent, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, AccountRegistered, events[0].Type)

	events, err = bus.ListAccountEvents(ctx, model.RoleStudent, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = bus.ListAccountEvents(ctx, model.RoleTeacher, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNoOpEventBus(t *testing.T) {
	bus := NewNoOpEventBus()
	assert.NoError(t, bus.PublishAccountEvent(context.Background(), model.RoleTeacher, NewAccountEvent(AccountDeleted, "t1", "")))
	events, err := bus.ListAccountEvents(context.Background(), model.RoleTeacher, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, bus.Close())
}

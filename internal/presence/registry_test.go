package presence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawtrail/pawtrail/internal/presence"
)

func TestRegistry_ConnectDisconnect(t *testing.T) {
	r := presence.NewRegistry()

	assert.False(t, r.IsViewingRoom("usr_1", "room_1"))

	r.Connect("usr_1", "room_1")
	assert.True(t, r.IsViewingRoom("usr_1", "room_1"))
	assert.False(t, r.IsViewingRoom("usr_1", "room_2"))
	assert.False(t, r.IsViewingRoom("usr_2", "room_1"))

	r.Disconnect("usr_1", "room_1")
	assert.False(t, r.IsViewingRoom("usr_1", "room_1"))
}

func TestRegistry_MultipleConnections(t *testing.T) {
	r := presence.NewRegistry()

	// Two devices viewing the same room: one disconnect leaves the user
	// still present.
	r.Connect("usr_1", "room_1")
	r.Connect("usr_1", "room_1")

	r.Disconnect("usr_1", "room_1")
	assert.True(t, r.IsViewingRoom("usr_1", "room_1"))

	r.Disconnect("usr_1", "room_1")
	assert.False(t, r.IsViewingRoom("usr_1", "room_1"))
}

func TestRegistry_UnbalancedDisconnectIgnored(t *testing.T) {
	r := presence.NewRegistry()

	r.Disconnect("usr_1", "room_1")
	assert.False(t, r.IsViewingRoom("usr_1", "room_1"))

	r.Connect("usr_1", "room_1")
	assert.True(t, r.IsViewingRoom("usr_1", "room_1"))
}

package device_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrail/pawtrail/internal/device"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  device.TransportFamily
	}{
		{"expo token", "ExponentPushToken[abc123DEF]", device.FamilyExpo},
		{"short expo prefix", "ExpoPushToken[xyz789]", device.FamilyExpo},
		{"raw fcm token", "dGhpcy1pcy1hLXRva2Vu:APA91bFakeFcmToken", device.FamilyFCM},
		{"empty brackets are not a token", "ExponentPushToken[]", device.FamilyFCM},
		{"missing closing bracket", "ExponentPushToken[abc", device.FamilyFCM},
		{"prefix not at start", "xExponentPushToken[abc]", device.FamilyFCM},
		{"empty string", "", device.FamilyFCM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, device.Classify(tt.token))
		})
	}
}

func TestRegistry_Register_DerivesFamily(t *testing.T) {
	registry := device.NewRegistry(device.NewInMemoryRepository())
	ctx := context.Background()

	e, err := registry.Register(ctx, "ExponentPushToken[abc]", "usr_1", nil, device.PlatformIOS)
	require.NoError(t, err)
	assert.Equal(t, device.FamilyExpo, e.Family)

	e, err = registry.Register(ctx, "raw-fcm-token", "usr_1", nil, device.PlatformAndroid)
	require.NoError(t, err)
	assert.Equal(t, device.FamilyFCM, e.Family)
}

func TestRegistry_Register_ReassignsOwnership(t *testing.T) {
	repo := device.NewInMemoryRepository()
	registry := device.NewRegistry(repo)
	ctx := context.Background()

	const token = "ExponentPushToken[shared-device]"

	_, err := registry.Register(ctx, token, "usr_a", nil, device.PlatformIOS)
	require.NoError(t, err)

	_, err = registry.Register(ctx, token, "usr_b", nil, device.PlatformIOS)
	require.NoError(t, err)

	e, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "usr_b", e.UserID, "re-registration reassigns the token to the new user")

	// Exactly one endpoint exists for the token: the old owner lost it.
	forA, err := registry.TokensFor(ctx, "usr_a")
	require.NoError(t, err)
	assert.Empty(t, forA)

	forB, err := registry.TokensFor(ctx, "usr_b")
	require.NoError(t, err)
	assert.Len(t, forB, 1)
}

func TestRegistry_Unregister_OwnerScoped(t *testing.T) {
	registry := device.NewRegistry(device.NewInMemoryRepository())
	ctx := context.Background()

	const token = "raw-token-1"

	_, err := registry.Register(ctx, token, "usr_owner", nil, device.PlatformAndroid)
	require.NoError(t, err)

	// A different user deleting the token is a no-op.
	require.NoError(t, registry.Unregister(ctx, token, "usr_other"))

	owned, err := registry.TokensFor(ctx, "usr_owner")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	// The owner deleting it removes it; repeating is still not an error.
	require.NoError(t, registry.Unregister(ctx, token, "usr_owner"))
	require.NoError(t, registry.Unregister(ctx, token, "usr_owner"))

	owned, err = registry.TokensFor(ctx, "usr_owner")
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestRegistry_Invalidate(t *testing.T) {
	registry := device.NewRegistry(device.NewInMemoryRepository())
	ctx := context.Background()

	_, err := registry.Register(ctx, "dead-token", "usr_1", nil, device.PlatformAndroid)
	require.NoError(t, err)

	require.NoError(t, registry.Invalidate(ctx, "dead-token"))

	owned, err := registry.TokensFor(ctx, "usr_1")
	require.NoError(t, err)
	assert.Empty(t, owned)

	// Invalidating an unknown token is a no-op.
	require.NoError(t, registry.Invalidate(ctx, "never-seen"))
}

func TestRegistry_TokensForMany(t *testing.T) {
	registry := device.NewRegistry(device.NewInMemoryRepository())
	ctx := context.Background()

	_, err := registry.Register(ctx, "ExponentPushToken[a]", "usr_1", nil, device.PlatformIOS)
	require.NoError(t, err)
	_, err = registry.Register(ctx, "fcm-token-b", "usr_1", nil, device.PlatformAndroid)
	require.NoError(t, err)
	_, err = registry.Register(ctx, "fcm-token-c", "usr_2", nil, device.PlatformAndroid)
	require.NoError(t, err)
	_, err = registry.Register(ctx, "fcm-token-d", "usr_3", nil, device.PlatformAndroid)
	require.NoError(t, err)

	endpoints, err := registry.TokensForMany(ctx, []string{"usr_1", "usr_2"})
	require.NoError(t, err)
	assert.Len(t, endpoints, 3)
}

package account

import (
	"context"
	"encoding/json"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*Engine, *storage.MemStore) {
	store := storage.NewMemStore()
	return NewEngine(store, 0), store
}

func loginDemo(t *testing.T, engine *Engine) *models.User {
	t.Helper()
	user, err := engine.Login(context.Background(), "demo@vamifoods.com", "demo123")
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestLoginSuccess(t *testing.T) {
	engine, store := newTestEngine()

	user := loginDemo(t, engine)
	assert.Equal(t, "Demo User", user.Name)
	assert.True(t, engine.IsAuthenticated())
	assert.False(t, engine.IsLoading())

	raw, err := store.Get(context.Background(), storage.KeySessionUser)
	require.NoError(t, err)
	var persisted models.User
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, user.ID, persisted.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	engine, _ := newTestEngine()

	user, err := engine.Login(context.Background(), "demo@vamifoods.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
	assert.False(t, engine.IsAuthenticated())
}

func TestLoginUnknownEmail(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Login(context.Background(), "nobody@example.com", "demo123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupCreatesEmptyAccount(t *testing.T) {
	engine, _ := newTestEngine()

	user, err := engine.Signup(context.Background(), "New User", "new@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Empty(t, user.Addresses)
	assert.Empty(t, user.Wishlist)
	assert.Empty(t, user.Orders)
	assert.True(t, engine.IsAuthenticated())
}

func TestLogoutClearsSessionAndStore(t *testing.T) {
	engine, store := newTestEngine()
	loginDemo(t, engine)

	engine.Logout(context.Background())

	assert.False(t, engine.IsAuthenticated())
	assert.Nil(t, engine.Current())

	_, err := store.Get(context.Background(), storage.KeySessionUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMutatorsAreNoOpsWhenUnauthenticated(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	name := "Ghost"
	engine.UpdateProfile(ctx, ProfileUpdate{Name: &name})
	assert.Nil(t, engine.AddAddress(ctx, models.Address{Name: "Ghost"}))
	engine.UpdateAddress(ctx, "1", AddressUpdate{Name: &name})
	engine.DeleteAddress(ctx, "1")
	engine.AddToWishlist(ctx, "banana-chips")
	engine.RemoveFromWishlist(ctx, "banana-chips")
	assert.Nil(t, engine.AddOrder(ctx, models.Order{Total: 100}))

	assert.Nil(t, engine.Current())
	_, err := store.Get(ctx, storage.KeySessionUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)

	phone := "+91 1112223334"
	engine.UpdateProfile(context.Background(), ProfileUpdate{Phone: &phone})

	user := engine.Current()
	assert.Equal(t, phone, user.Phone)
	assert.Equal(t, "Demo User", user.Name)
}

func TestAddAddressAssignsUniqueIDs(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)
	ctx := context.Background()

	a := engine.AddAddress(ctx, models.Address{Name: "Office", City: "Hyderabad"})
	b := engine.AddAddress(ctx, models.Address{Name: "Home", City: "Warangal"})
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	user := engine.Current()
	assert.Len(t, user.Addresses, 3) // seeded default + two added
}

func TestUpdateAddressMergesFields(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)
	ctx := context.Background()

	added := engine.AddAddress(ctx, models.Address{Name: "Office", City: "Hyderabad"})
	city := "Secunderabad"
	engine.UpdateAddress(ctx, added.ID, AddressUpdate{City: &city})

	user := engine.Current()
	got := user.AddressByID(added.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Secunderabad", got.City)
	assert.Equal(t, "Office", got.Name)
}

func TestUpdateAddressUnknownIDIsNoOp(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)

	before := engine.Current()
	name := "Nobody"
	engine.UpdateAddress(context.Background(), "missing", AddressUpdate{Name: &name})
	assert.Equal(t, before, engine.Current())
}

func TestDeleteAddress(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)
	ctx := context.Background()

	added := engine.AddAddress(ctx, models.Address{Name: "Office"})
	engine.DeleteAddress(ctx, added.ID)

	assert.Nil(t, engine.Current().AddressByID(added.ID))
}

func TestMultipleDefaultAddressesAllowed(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)
	ctx := context.Background()

	// The seeded address is already the default; nothing demotes it.
	engine.AddAddress(ctx, models.Address{Name: "Office", IsDefault: true})

	defaults := 0
	for _, addr := range engine.Current().Addresses {
		if addr.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 2, defaults)
}

func TestAddToWishlistIsIdempotent(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)
	ctx := context.Background()

	engine.AddToWishlist(ctx, "banana-chips")
	engine.AddToWishlist(ctx, "banana-chips")

	occurrences := 0
	for _, id := range engine.Current().Wishlist {
		if id == "banana-chips" {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)
}

func TestRemoveFromWishlist(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)
	ctx := context.Background()

	engine.RemoveFromWishlist(ctx, "mixture")
	assert.NotContains(t, engine.Current().Wishlist, "mixture")

	// Removing again stays a no-op.
	engine.RemoveFromWishlist(ctx, "mixture")
	assert.NotContains(t, engine.Current().Wishlist, "mixture")
}

func TestAddOrderPrependsNewestFirst(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)
	ctx := context.Background()

	first := engine.AddOrder(ctx, models.Order{Status: models.OrderStatusConfirmed, Total: 100})
	second := engine.AddOrder(ctx, models.Order{Status: models.OrderStatusConfirmed, Total: 200})
	require.NotNil(t, first)
	require.NotNil(t, second)

	orders := engine.Current().Orders
	require.GreaterOrEqual(t, len(orders), 3) // two new + seeded history
	assert.Equal(t, int64(200), orders[0].Total)
	assert.Equal(t, int64(100), orders[1].Total)
	assert.Contains(t, orders[0].ID, "ORD")
	assert.NotEmpty(t, orders[0].Date)
}

func TestRehydrateRestoresSession(t *testing.T) {
	store := storage.NewMemStore()
	first := NewEngine(store, 0)
	user, err := first.Login(context.Background(), "demo@vamifoods.com", "demo123")
	require.NoError(t, err)

	second := NewEngine(store, 0)
	require.NoError(t, second.Rehydrate(context.Background()))
	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, user.ID, second.Current().ID)
}

func TestSubscribeNotifiedOnMutation(t *testing.T) {
	engine, _ := newTestEngine()
	loginDemo(t, engine)

	calls := 0
	engine.Subscribe(func() { calls++ })
	engine.AddToWishlist(context.Background(), "gongura-pickle")

	assert.Equal(t, 1, calls)
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/guest"
	"github.com/junaidrashid-git/storefront/kv"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer records calls in order and fails the products listed in failCart
// and failWishlist.
type fakeServer struct {
	calls        []string
	failCart     map[string]bool
	failWishlist map[string]bool
	cancel       func()
}

func (f *fakeServer) AddToCart(ctx context.Context, productID string, quantity int) error {
	f.calls = append(f.calls, fmt.Sprintf("cart:%s:%d", productID, quantity))
	if f.cancel != nil {
		f.cancel()
	}
	if f.failCart[productID] {
		return &errs.Error{Op: "client.AddToCart", Status: 500, Err: errs.ErrNetwork}
	}
	return nil
}

func (f *fakeServer) AddToWishlist(ctx context.Context, productID string) error {
	f.calls = append(f.calls, "wishlist:"+productID)
	if f.failWishlist[productID] {
		return errors.New("wishlist unavailable")
	}
	return nil
}

func seedGuest(t *testing.T, cart []string, wishlist []string) *guest.Store {
	t.Helper()
	store := guest.NewStore(kv.NewMemoryStore())
	ctx := context.Background()
	for i, id := range cart {
		require.NoError(t, store.AddToCart(ctx, id, i+1))
	}
	for _, id := range wishlist {
		require.NoError(t, store.AddToWishlist(ctx, id))
	}
	return store
}

func TestReconcile_MigratesInOrder(t *testing.T) {
	store := seedGuest(t, []string{"p1", "p2"}, []string{"w1", "w2"})
	server := &fakeServer{}

	report, err := NewService(store, server).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"cart:p1:1", "cart:p2:2", "wishlist:w1", "wishlist:w2"}, server.calls)
	assert.Equal(t, 4, report.Migrated())
	assert.Empty(t, report.Failed())
	assert.True(t, report.Cleared)

	cart, err := store.Cart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestReconcile_ClearAllLosesFailedItems(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4"}

	for k := range ids {
		t.Run(fmt.Sprintf("item %d fails", k), func(t *testing.T) {
			store := seedGuest(t, ids, []string{"w1"})
			server := &fakeServer{failCart: map[string]bool{ids[k]: true}}

			report, err := NewService(store, server, WithPolicy(ClearAll)).Reconcile(context.Background())
			require.NoError(t, err)

			// Every item was attempted despite the failure.
			assert.Len(t, server.calls, len(ids)+1)
			require.Len(t, report.Failed(), 1)
			assert.Equal(t, ids[k], report.Failed()[0].ProductID)
			assert.True(t, errs.IsNetwork(report.Failed()[0].Err))

			cart, err := store.Cart(context.Background())
			require.NoError(t, err)
			assert.Empty(t, cart.Items)

			wishlist, err := store.Wishlist(context.Background())
			require.NoError(t, err)
			assert.Empty(t, wishlist.Products)
		})
	}
}

func TestReconcile_ClearMigratedKeepsFailures(t *testing.T) {
	store := seedGuest(t, []string{"p1", "p2", "p3"}, []string{"w1", "w2"})
	server := &fakeServer{
		failCart:     map[string]bool{"p2": true},
		failWishlist: map[string]bool{"w1": true},
	}

	report, err := NewService(store, server, WithPolicy(ClearMigrated)).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Migrated())

	cart, err := store.Cart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.GuestCartItem{{ProductID: "p2", Quantity: 2}}, cart.Items)

	wishlist, err := store.Wishlist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, wishlist.Products)

	// A second login retries only what is left.
	server.failCart, server.failWishlist, server.calls = nil, nil, nil
	report, err = NewService(store, server, WithPolicy(ClearMigrated)).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cart:p2:2", "wishlist:w1"}, server.calls)
	assert.Empty(t, report.Failed())

	cart, err = store.Cart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestReconcile_ClearNone(t *testing.T) {
	store := seedGuest(t, []string{"p1"}, []string{"w1"})

	report, err := NewService(store, &fakeServer{}, WithPolicy(ClearNone)).Reconcile(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Cleared)

	cart, err := store.Cart(context.Background())
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestReconcile_EmptyGuestState(t *testing.T) {
	store := guest.NewStore(kv.NewMemoryStore())
	server := &fakeServer{}

	report, err := NewService(store, server).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, server.calls)
	assert.Zero(t, report.Migrated())
}

func TestReconcile_CancellationReportsRemainingAsFailed(t *testing.T) {
	store := seedGuest(t, []string{"p1", "p2", "p3"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	server := &fakeServer{cancel: cancel}

	report, err := NewService(store, server, WithPolicy(ClearMigrated)).Reconcile(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"cart:p1:1"}, server.calls)
	require.Len(t, report.Failed(), 2)
	assert.ErrorIs(t, report.Failed()[0].Err, context.Canceled)

	cart, err := store.Cart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.GuestCartItem{{ProductID: "p2", Quantity: 2}, {ProductID: "p3", Quantity: 3}}, cart.Items)
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, bool) {
	return string(s), s != ""
}

func TestClient_NoTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	ctx := context.Background()

	_, err := c.Cart(ctx)
	assert.True(t, errs.IsAuthRequired(err))
	assert.True(t, errs.IsAuthRequired(c.AddToCart(ctx, "p1", 1)))
	assert.True(t, errs.IsAuthRequired(c.AddToWishlist(ctx, "p1")))
	_, err = c.CreateOrder(ctx, models.OrderRequest{})
	assert.True(t, errs.IsAuthRequired(err))

	assert.Zero(t, calls.Load())
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		msg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"Invalid or expired token"}`, errs.IsAuthRequired, "Invalid or expired token"},
		{"forbidden", http.StatusForbidden, `{"error":"nope"}`, errs.IsAuthRequired, "nope"},
		{"bad request", http.StatusBadRequest, `{"error":"Product does not exist"}`, errs.IsValidation, "Product does not exist"},
		{"conflict", http.StatusConflict, `{"error":"cart totals changed"}`, errs.IsValidation, "cart totals changed"},
		{"not found", http.StatusNotFound, `{"error":"Cart item not found"}`, errs.IsNotFound, "Cart item not found"},
		{"server error", http.StatusInternalServerError, `oops`, errs.IsNetwork, "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL, staticToken("t")).AddToCart(context.Background(), "p1", 1)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected classification: %v", err)

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.msg, e.Message)
		})
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url, staticToken("t")).AddToCart(context.Background(), "p1", 1)
	assert.True(t, errs.IsNetwork(err))
	assert.False(t, errs.IsAuthRequired(err))
}

func TestClient_RequestsAndDecoding(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.RequestURI()
		gotMethod = r.Method
		gotBody = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/cart":
			w.Write([]byte(`{"items":[{"productId":"p1","quantity":2,"product":{"id":"p1","name":"Silk Saree","price":1500,"images":["a.jpg","b.jpg"],"inStock":true}}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/verify":
			w.Write([]byte(`{"token":"jwt","user":{"id":"u1","phone":"9876543210","name":"User 3210"},"created":true}`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", staticToken("secret"))
	ctx := context.Background()

	cart, err := c.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1500), cart.Items[0].Product.Price)
	assert.Equal(t, "a.jpg", cart.Items[0].Product.FirstImage())

	require.NoError(t, c.AddToCart(ctx, "p1", 3))
	assert.Equal(t, "/api/cart", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, map[string]any{"productId": "p1", "quantity": float64(3)}, gotBody)

	require.NoError(t, c.UpdateCartQuantity(ctx, "p 1", 0))
	assert.Equal(t, "/api/cart/p%201", gotPath)
	assert.Equal(t, map[string]any{"quantity": float64(0)}, gotBody)

	require.NoError(t, c.AddToWishlist(ctx, "p2"))
	assert.Equal(t, "/api/wishlist/p2", gotPath)

	resp, err := New(srv.URL, staticToken("")).VerifyOTP(ctx, "9876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)
	assert.True(t, resp.Created)
	assert.Empty(t, gotAuth)

	_, err = c.Products(ctx, ProductQuery{Search: "silk", MinPrice: 100})
	require.NoError(t, err)
	assert.Equal(t, "/api/products?min_price=100&search=silk", gotPath)

	_, err = c.Products(ctx, ProductQuery{
		Category:  "Silk Sarees",
		Colors:    []string{"Yellow", "Orange"},
		Occasions: []string{"Wedding"},
		NewOnly:   true,
		Sort:      "price",
		Order:     "asc",
		Limit:     8,
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/products?category=Silk+Sarees&color=Yellow%2COrange&isNew=true&limit=8&occasion=Wedding&order=asc&sort=price", gotPath)
}

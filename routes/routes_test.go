package routes_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/storefront/internal/apitest"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() models.AddressInput {
	return models.AddressInput{
		AddressFields: models.AddressFields{
			FullName: "Asha Rao",
			Phone:    "9876543210",
			Address:  "12 MG Road",
			Locality: "Indiranagar",
			City:     "Bengaluru",
			State:    "Karnataka",
			Pincode:  "560038",
		},
		AddressType: models.AddressTypeOffice,
	}
}

func TestAuth_OTPLoginRegistersOnce(t *testing.T) {
	env := apitest.New(t)
	phone := "9876543210"

	w := env.Do(t, http.MethodPost, "/api/auth/otp", "", obj{"phone": "12345"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Do(t, http.MethodPost, "/api/auth/otp", "", obj{"phone": phone})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	code := env.Sender.Code(phone)
	require.Len(t, code, 6)

	wrong := string('0'+(code[0]-'0'+1)%10) + code[1:]
	w = env.Do(t, http.MethodPost, "/api/auth/verify", "", obj{"phone": phone, "code": wrong})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Do(t, http.MethodPost, "/api/auth/verify", "", obj{"phone": phone, "code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := apitest.Decode[models.AuthResponse](t, w)
	assert.True(t, first.Created)
	assert.Equal(t, "User 3210", first.User.Name)
	assert.NotEmpty(t, first.Token)

	// Codes are single use.
	w = env.Do(t, http.MethodPost, "/api/auth/verify", "", obj{"phone": phone, "code": code})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, env.Do(t, http.MethodPost, "/api/auth/otp", "", obj{"phone": phone}).Code)
	w = env.Do(t, http.MethodPost, "/api/auth/verify", "", obj{"phone": phone, "code": env.Sender.Code(phone)})
	require.Equal(t, http.StatusOK, w.Code)
	second := apitest.Decode[models.AuthResponse](t, w)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)

	// The issued token opens the signed-in routes.
	w = env.Do(t, http.MethodGet, "/api/user", second.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, phone, apitest.Decode[models.User](t, w).Phone)
}

func TestAuth_RejectsMissingOrBadToken(t *testing.T) {
	env := apitest.New(t)

	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodGet, "/api/cart", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodGet, "/api/cart", "not-a-jwt", nil).Code)

	// Public routes stay open.
	assert.Equal(t, http.StatusOK, env.Do(t, http.MethodGet, "/api/products", "", nil).Code)
}

func TestCart_AddIncrementsAndJoinsCurrentPrice(t *testing.T) {
	env := apitest.New(t)
	saree := env.Product(t, "Silk Saree", 1500, "s1.jpg")
	_, token := env.User(t, "9876543210")

	for i := 0; i < 2; i++ {
		w := env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": saree.ID, "quantity": 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": "missing", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": saree.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Price changes after the item was added.
	w = env.Admin(t, http.MethodPut, "/admin/products/"+saree.ID, obj{"price": 1200})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := apitest.Decode[models.Cart](t, w)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, int64(1200), cart.Items[0].Product.Price)
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	env := apitest.New(t)
	a := env.Product(t, "Kurta", 400)
	b := env.Product(t, "Dupatta", 250)
	_, token := env.User(t, "9876543210")

	env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": a.ID, "quantity": 1})
	env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": b.ID, "quantity": 1})

	w := env.Do(t, http.MethodPut, "/api/cart/"+a.ID, token, obj{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Do(t, http.MethodPut, "/api/cart/"+b.ID, token, obj{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	cart := apitest.Decode[models.Cart](t, env.Do(t, http.MethodGet, "/api/cart", token, nil))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, a.ID, cart.Items[0].ProductID)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodDelete, "/api/cart/"+b.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodPut, "/api/cart/"+b.ID, token, obj{"quantity": 2}).Code)

	require.Equal(t, http.StatusOK, env.Do(t, http.MethodDelete, "/api/cart", token, nil).Code)
	cart = apitest.Decode[models.Cart](t, env.Do(t, http.MethodGet, "/api/cart", token, nil))
	assert.Empty(t, cart.Items)
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	env := apitest.New(t)
	p := env.Product(t, "Scarf", 300)
	_, token := env.User(t, "9876543210")

	for i := 0; i < 2; i++ {
		w := env.Do(t, http.MethodPost, "/api/wishlist/"+p.ID, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, http.StatusBadRequest, env.Do(t, http.MethodPost, "/api/wishlist/missing", token, nil).Code)

	type wishlist struct {
		Items []models.WishlistItem `json:"items"`
	}
	got := apitest.Decode[wishlist](t, env.Do(t, http.MethodGet, "/api/wishlist", token, nil))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Scarf", got.Items[0].Product.Name)

	require.Equal(t, http.StatusOK, env.Do(t, http.MethodDelete, "/api/wishlist/"+p.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodDelete, "/api/wishlist/"+p.ID, token, nil).Code)
}

func TestAddresses(t *testing.T) {
	env := apitest.New(t)
	_, token := env.User(t, "9876543210")
	_, otherToken := env.User(t, "9123456780")

	bad := validAddress()
	bad.Pincode = "5600"
	w := env.Do(t, http.MethodPost, "/api/addresses", token, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pincode")

	w = env.Do(t, http.MethodPost, "/api/addresses", token, validAddress())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := apitest.Decode[models.Address](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.AddressTypeOffice, created.AddressType)

	list := apitest.Decode[[]models.Address](t, env.Do(t, http.MethodGet, "/api/addresses", token, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "Asha Rao", list[0].FullName)

	assert.Empty(t, apitest.Decode[[]models.Address](t, env.Do(t, http.MethodGet, "/api/addresses", otherToken, nil)))
}

func TestOrders_PlaceOrder(t *testing.T) {
	env := apitest.New(t)
	kurta := env.Product(t, "Kurta", 400, "k1.jpg", "k2.jpg")
	dupatta := env.Product(t, "Dupatta", 250)
	_, token := env.User(t, "9876543210")
	_, otherToken := env.User(t, "9123456780")

	address := apitest.Decode[models.Address](t, env.Do(t, http.MethodPost, "/api/addresses", token, validAddress()))

	w := env.Do(t, http.MethodPost, "/api/orders", token, models.OrderRequest{AddressID: address.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")

	env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": kurta.ID, "quantity": 2})
	env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": dupatta.ID, "quantity": 1})

	// Someone else's address does not resolve.
	foreign := apitest.Decode[models.Address](t, env.Do(t, http.MethodPost, "/api/addresses", otherToken, validAddress()))
	w = env.Do(t, http.MethodPost, "/api/orders", token, models.OrderRequest{AddressID: foreign.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Do(t, http.MethodPost, "/api/orders", token, models.OrderRequest{AddressID: address.ID, PaymentMethod: "upi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Stale client totals.
	w = env.Do(t, http.MethodPost, "/api/orders", token, models.OrderRequest{
		AddressID: address.ID, Subtotal: 800, ShippingCharges: 99, Total: 899,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.Do(t, http.MethodPost, "/api/orders", token, models.OrderRequest{
		AddressID:       address.ID,
		Subtotal:        1050,
		ShippingCharges: 0,
		Total:           1050,
		PaymentMethod:   models.PaymentCOD,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := apitest.Decode[models.Order](t, w)
	assert.NotEmpty(t, order.OrderRef)
	assert.Equal(t, int64(1050), order.Total)
	assert.Equal(t, int64(0), order.ShippingCharges)
	assert.Equal(t, "560038", order.ShippingAddress.Pincode)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "k1.jpg", order.Items[0].Image)

	// The cart is emptied by the order.
	cart := apitest.Decode[models.Cart](t, env.Do(t, http.MethodGet, "/api/cart", token, nil))
	assert.Empty(t, cart.Items)

	orders := apitest.Decode[[]models.Order](t, env.Do(t, http.MethodGet, "/api/orders", token, nil))
	require.Len(t, orders, 1)

	w = env.Do(t, http.MethodGet, "/api/orders/"+order.OrderRef, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.ID, apitest.Decode[models.Order](t, w).ID)
	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodGet, "/api/orders/"+order.ID, otherToken, nil).Code)
}

func TestOrders_RejectsDeletedProduct(t *testing.T) {
	env := apitest.New(t)
	p := env.Product(t, "Kurta", 400)
	_, token := env.User(t, "9876543210")

	env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": p.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, env.Admin(t, http.MethodDelete, "/admin/products/"+p.ID, nil).Code)

	cart := apitest.Decode[models.Cart](t, env.Do(t, http.MethodGet, "/api/cart", token, nil))
	require.Len(t, cart.Items, 1)
	assert.Nil(t, cart.Items[0].Product)

	in := validAddress()
	w := env.Do(t, http.MethodPost, "/api/orders", token, models.OrderRequest{ShippingAddress: in.AddressFields})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProducts_ListFilters(t *testing.T) {
	env := apitest.New(t)
	for _, p := range []models.Product{
		{Name: "Silk Saree", Price: 1500, Fabric: "Silk", Color: "Yellow", Occasion: "Wedding", IsNew: true, Category: "Sarees"},
		{Name: "Cotton Kurta", Price: 400, Fabric: "Cotton", Color: "Blue", Occasion: "Casual", Category: "Kurtas"},
		{Name: "Silk Scarf", Price: 300, Fabric: "Silk", Color: "Orange", Occasion: "Party", IsNew: true, Category: "Sarees"},
		{Name: "Georgette Saree", Price: 2200, Fabric: "Georgette", Color: "Red", Occasion: "Wedding", Category: "Sarees"},
	} {
		p.Images = []string{}
		p.InStock = true
		require.NoError(t, env.DB.Create(&p).Error)
	}

	names := func(path string) []string {
		w := env.Do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		out := []string{}
		for _, p := range apitest.Decode[[]models.Product](t, w) {
			out = append(out, p.Name)
		}
		return out
	}
	status := func(path string) int {
		return env.Do(t, http.MethodGet, path, "", nil).Code
	}

	assert.Equal(t, []string{"Silk Scarf", "Silk Saree"}, names("/api/products?search=silk&sort=price&order=asc"))
	assert.Equal(t, []string{"Cotton Kurta"}, names("/api/products?min_price=350&max_price=1000"))

	// New arrivals.
	assert.Equal(t, []string{"Silk Scarf", "Silk Saree"}, names("/api/products?isNew=true&sort=price&order=asc"))
	assert.Equal(t, []string{"Silk Scarf"}, names("/api/products?isNew=true&sort=price&order=asc&limit=1"))

	// Sidebar filters match any listed value, ignoring case.
	assert.Equal(t, []string{"Silk Saree", "Silk Scarf"}, names("/api/products?fabric=silk&sort=price&order=desc"))
	assert.Equal(t, []string{"Silk Scarf", "Silk Saree"}, names("/api/products?color=Yellow,Orange&sort=price&order=asc"))
	assert.Equal(t, []string{"Silk Saree", "Georgette Saree"}, names("/api/products?occasion=Wedding&sort=price&order=asc"))
	assert.Equal(t, []string{"Georgette Saree"}, names("/api/products?occasion=wedding&fabric=Georgette"))

	// Similar products in a category.
	assert.Equal(t, []string{"Georgette Saree", "Silk Saree"}, names("/api/products?category=Sarees&sort=price&order=desc&limit=2"))

	assert.Equal(t, http.StatusBadRequest, status("/api/products?sort=popularity"))
	assert.Equal(t, http.StatusBadRequest, status("/api/products?min_price=cheap"))
	assert.Equal(t, http.StatusBadRequest, status("/api/products?limit=0"))
	assert.Equal(t, http.StatusBadRequest, status("/api/products?isNew=maybe"))

	assert.Equal(t, http.StatusNotFound, status("/api/products/nope"))
}

func TestAdmin_ProductNewArrivalFlag(t *testing.T) {
	env := apitest.New(t)

	w := env.Admin(t, http.MethodPost, "/admin/products", obj{"name": "Lehenga", "price": 4999, "occasion": "Wedding", "isNew": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := apitest.Decode[models.Product](t, w)
	assert.True(t, p.IsNew)
	assert.Equal(t, "Wedding", p.Occasion)

	w = env.Admin(t, http.MethodPut, "/admin/products/"+p.ID, obj{"isNew": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Do(t, http.MethodGet, "/api/products?isNew=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, apitest.Decode[[]models.Product](t, w))
}

func TestAdmin_RequiresAPIKey(t *testing.T) {
	env := apitest.New(t)

	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodGet, "/admin/orders", "", nil).Code)

	w := env.Admin(t, http.MethodPost, "/admin/products", obj{"name": "Lehenga", "price": 4999, "images": []string{"l.jpg"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := apitest.Decode[models.Product](t, w)
	assert.True(t, p.InStock)

	w = env.Admin(t, http.MethodPost, "/admin/products", obj{"name": "Bad", "price": 100, "originalPrice": 50})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Admin(t, http.MethodGet, "/admin/orders/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=orders.xlsx", w.Header().Get("Content-Disposition"))
	assert.NotZero(t, w.Body.Len())
}

func TestAdmin_OrderFeed(t *testing.T) {
	env := apitest.New(t)
	srv := env.Server(t)
	p := env.Product(t, "Kurta", 400)
	_, token := env.User(t, "9876543210")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/admin/orders/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"X-API-KEY": {apitest.AdminAPIKey}})
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	env.Do(t, http.MethodPost, "/api/cart", token, obj{"productId": p.ID, "quantity": 1})
	in := validAddress()
	w := env.Do(t, http.MethodPost, "/api/orders", token, models.OrderRequest{ShippingAddress: in.AddressFields})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := apitest.Decode[models.Order](t, w)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.Order
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, placed.OrderRef, got.OrderRef)
	assert.Equal(t, int64(499), got.Total)
}

type obj = map[string]any

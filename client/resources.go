package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/junaidrashid-git/storefront/models"
)

// ──────────────── Cart ────────────────

// Cart returns the server cart with every product resolved at read time.
func (c *Client) Cart(ctx context.Context) (*models.Cart, error) {
	var cart models.Cart
	if err := c.do(ctx, "client.Cart", http.MethodGet, "/api/cart", true, nil, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// AddToCart adds quantity to the line for productID, creating it if needed.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	body := models.CartItemInput{ProductID: productID, Quantity: quantity}
	return c.do(ctx, "client.AddToCart", http.MethodPost, "/api/cart", true, body, nil)
}

// UpdateCartQuantity sets the quantity of a line; zero removes it.
func (c *Client) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	body := models.QuantityInput{Quantity: &quantity}
	return c.do(ctx, "client.UpdateCartQuantity", http.MethodPut, "/api/cart/"+url.PathEscape(productID), true, body, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.do(ctx, "client.RemoveFromCart", http.MethodDelete, "/api/cart/"+url.PathEscape(productID), true, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, "client.ClearCart", http.MethodDelete, "/api/cart", true, nil, nil)
}

// ──────────────── Wishlist ────────────────

type wishlistResponse struct {
	Items []models.WishlistItem `json:"items"`
}

func (c *Client) Wishlist(ctx context.Context) ([]models.WishlistItem, error) {
	var resp wishlistResponse
	if err := c.do(ctx, "client.Wishlist", http.MethodGet, "/api/wishlist", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AddToWishlist is idempotent on the server.
func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, "client.AddToWishlist", http.MethodPost, "/api/wishlist/"+url.PathEscape(productID), true, nil, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, "client.RemoveFromWishlist", http.MethodDelete, "/api/wishlist/"+url.PathEscape(productID), true, nil, nil)
}

// ──────────────── Addresses ────────────────

func (c *Client) Addresses(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	if err := c.do(ctx, "client.Addresses", http.MethodGet, "/api/addresses", true, nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, in models.AddressInput) (*models.Address, error) {
	var address models.Address
	if err := c.do(ctx, "client.CreateAddress", http.MethodPost, "/api/addresses", true, in, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// ──────────────── Orders ────────────────

func (c *Client) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, "client.CreateOrder", http.MethodPost, "/api/orders", true, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, "client.Orders", http.MethodGet, "/api/orders", true, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ──────────────── Public ────────────────

func (c *Client) Product(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, "client.Product", http.MethodGet, "/api/products/"+url.PathEscape(productID), false, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductQuery filters the public catalog. Fabrics, Colors and Occasions
// match any of the listed values. Sort is "createdAt", "price" or "name";
// Order is "asc" or "desc". Zero values are omitted.
type ProductQuery struct {
	Search    string
	Category  string
	Fabrics   []string
	Colors    []string
	Occasions []string
	NewOnly   bool
	MinPrice  int64
	MaxPrice  int64
	Sort      string
	Order     string
	Limit     int
}

func (c *Client) Products(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.MinPrice > 0 {
		params.Set("min_price", strconv.FormatInt(q.MinPrice, 10))
	}
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatInt(q.MaxPrice, 10))
	}
	if len(q.Fabrics) > 0 {
		params.Set("fabric", strings.Join(q.Fabrics, ","))
	}
	if len(q.Colors) > 0 {
		params.Set("color", strings.Join(q.Colors, ","))
	}
	if len(q.Occasions) > 0 {
		params.Set("occasion", strings.Join(q.Occasions, ","))
	}
	if q.NewOnly {
		params.Set("isNew", "true")
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/api/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var products []models.Product
	if err := c.do(ctx, "client.Products", http.MethodGet, path, false, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

type otpRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code,omitempty"`
}

// SendOTP asks the server to deliver a verification code to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.do(ctx, "client.SendOTP", http.MethodPost, "/api/auth/otp", false, otpRequest{Phone: phone}, nil)
}

// VerifyOTP exchanges a code for a session. The server signs the user in, or
// registers them when the phone is new.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, "client.VerifyOTP", http.MethodPost, "/api/auth/verify", false, otpRequest{Phone: phone, Code: code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

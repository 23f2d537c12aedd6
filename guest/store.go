// Package guest keeps the cart, wishlist and session credential of a visitor in
// device-local storage. The storage itself is injected as a kv.Store.
//
// There is no locking across callers: every mutation is a read-modify-write of
// the whole object, so concurrent writers race and the last one wins.
package guest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/junaidrashid-git/storefront/errs"
	"github.com/junaidrashid-git/storefront/kv"
	"github.com/junaidrashid-git/storefront/models"
	"go.uber.org/zap"
)

const (
	CartKey     = "guest_cart"
	WishlistKey = "guest_wishlist"
	TokenKey    = "token"
	UserKey     = "user"
)

type Store struct {
	kv     kv.Store
	logger *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(store kv.Store, opts ...Option) *Store {
	s := &Store{kv: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cart returns the persisted cart. A missing or undecodable value reads as an
// empty cart; only storage failures are returned.
func (s *Store) Cart(ctx context.Context) (models.GuestCart, error) {
	cart := models.GuestCart{Items: []models.GuestCartItem{}}
	ok, err := s.load(ctx, CartKey, &cart)
	if err != nil {
		return cart, err
	}
	if !ok || cart.Items == nil {
		cart.Items = []models.GuestCartItem{}
	}
	return cart, nil
}

// SetCart replaces the persisted cart.
func (s *Store) SetCart(ctx context.Context, cart models.GuestCart) error {
	if cart.Items == nil {
		cart.Items = []models.GuestCartItem{}
	}
	return s.save(ctx, CartKey, cart)
}

// AddToCart increments the quantity of an existing line or appends a new one.
func (s *Store) AddToCart(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return errs.Validation("guest.AddToCart", "product id is required")
	}
	if quantity < 1 {
		return errs.Validation("guest.AddToCart", "quantity must be at least 1")
	}

	cart, err := s.Cart(ctx)
	if err != nil {
		return err
	}

	if i, ok := cart.Find(productID); ok {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.GuestCartItem{ProductID: productID, Quantity: quantity})
	}
	return s.SetCart(ctx, cart)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line. Unknown products are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	cart, err := s.Cart(ctx)
	if err != nil {
		return err
	}

	i, ok := cart.Find(productID)
	if !ok {
		return nil
	}
	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}
	return s.SetCart(ctx, cart)
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	cart, err := s.Cart(ctx)
	if err != nil {
		return err
	}

	i, ok := cart.Find(productID)
	if !ok {
		return nil
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	return s.SetCart(ctx, cart)
}

// ClearCart deletes the persisted cart rather than storing an empty one.
func (s *Store) ClearCart(ctx context.Context) error {
	return s.kv.Delete(ctx, CartKey)
}

func (s *Store) Wishlist(ctx context.Context) (models.GuestWishlist, error) {
	wishlist := models.GuestWishlist{Products: []string{}}
	ok, err := s.load(ctx, WishlistKey, &wishlist)
	if err != nil {
		return wishlist, err
	}
	if !ok || wishlist.Products == nil {
		wishlist.Products = []string{}
	}
	return wishlist, nil
}

func (s *Store) SetWishlist(ctx context.Context, wishlist models.GuestWishlist) error {
	if wishlist.Products == nil {
		wishlist.Products = []string{}
	}
	return s.save(ctx, WishlistKey, wishlist)
}

// AddToWishlist is a no-op when the product is already present.
func (s *Store) AddToWishlist(ctx context.Context, productID string) error {
	if productID == "" {
		return errs.Validation("guest.AddToWishlist", "product id is required")
	}

	wishlist, err := s.Wishlist(ctx)
	if err != nil {
		return err
	}
	if wishlist.Contains(productID) {
		return nil
	}
	wishlist.Products = append(wishlist.Products, productID)
	return s.SetWishlist(ctx, wishlist)
}

func (s *Store) RemoveFromWishlist(ctx context.Context, productID string) error {
	wishlist, err := s.Wishlist(ctx)
	if err != nil {
		return err
	}

	kept := wishlist.Products[:0]
	for _, id := range wishlist.Products {
		if id != productID {
			kept = append(kept, id)
		}
	}
	wishlist.Products = kept
	return s.SetWishlist(ctx, wishlist)
}

func (s *Store) IsInWishlist(ctx context.Context, productID string) (bool, error) {
	wishlist, err := s.Wishlist(ctx)
	if err != nil {
		return false, err
	}
	return wishlist.Contains(productID), nil
}

func (s *Store) ClearWishlist(ctx context.Context) error {
	return s.kv.Delete(ctx, WishlistKey)
}

// load decodes key into v. It reports false when the key is absent or its
// value cannot be decoded.
func (s *Store) load(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Debug("discarding unreadable guest state", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, raw, 0)
}
